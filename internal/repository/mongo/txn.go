package mongo

import (
	"context"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
)

// mongoTxnRunner implements repository.TxnRunner on top of MongoDB client
// sessions. Repository calls made with the session context participate in the
// same multi-document transaction; an error from fn aborts it, so the
// session-seeding and progress-activation invariants hold even when writes
// span several collections.
type mongoTxnRunner struct {
	client *mongo.Client
}

// NewMongoTxnRunner creates a TxnRunner bound to the given client.
func NewMongoTxnRunner(client *mongo.Client) repository.TxnRunner {
	return &mongoTxnRunner{client: client}
}

func (r *mongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
