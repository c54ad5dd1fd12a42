package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	histogramWindowDays = 90
	oneRepMaxWindowDays = 180
	tonnageWindowDays   = 7
)

// --- View Models ---

// WeekBucket is one ISO week's session count. Key format is "2006-W02".
type WeekBucket struct {
	Week  string `json:"week"`
	Count int    `json:"count"`
}

// OneRepMaxPoint is the best estimated single for one calendar day.
type OneRepMaxPoint struct {
	Date      string  `json:"date"` // YYYY-MM-DD, UTC
	OneRepMax float64 `json:"oneRepMax"`
}

// TonnagePoint is one day's total lifted volume.
type TonnagePoint struct {
	Date    string  `json:"date"` // YYYY-MM-DD, UTC
	Tonnage float64 `json:"tonnage"`
}

// --- Service Interface ---

// AnalyticsService derives training statistics from the denormalized set
// ledger. All reads; nothing here mutates state.
type AnalyticsService interface {
	// WeeklySessionHistogram counts sessions per ISO week over the trailing 90
	// days. Every week in the window appears, zero weeks included.
	WeeklySessionHistogram(ctx context.Context, userID primitive.ObjectID) ([]WeekBucket, error)
	// Exercise1RMSeries returns the per-day best estimated one-rep max for the
	// exercise over the trailing 180 days. Days without logged sets are absent.
	Exercise1RMSeries(ctx context.Context, userID, exerciseID primitive.ObjectID) ([]OneRepMaxPoint, error)
	// CumulativeTonnage sums weight x reps per day over the trailing 7 days,
	// today included. Every day appears, zero days included.
	CumulativeTonnage(ctx context.Context, userID primitive.ObjectID) ([]TonnagePoint, error)
	// ExercisesWithHistory lists the exercises the user has logged weighted
	// sets for, for populating chart pickers.
	ExercisesWithHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
}

// --- Service Implementation ---

type analyticsService struct {
	sessionRepo  repository.SessionRepository
	setRepo      repository.ExerciseSetRepository
	exerciseRepo repository.ExerciseRepository
	now          func() time.Time
}

// NewAnalyticsService creates a new instance of analyticsService.
func NewAnalyticsService(
	sessionRepo repository.SessionRepository,
	setRepo repository.ExerciseSetRepository,
	exerciseRepo repository.ExerciseRepository,
) AnalyticsService {
	return &analyticsService{
		sessionRepo:  sessionRepo,
		setRepo:      setRepo,
		exerciseRepo: exerciseRepo,
		now:          time.Now,
	}
}

func (s *analyticsService) WeeklySessionHistogram(ctx context.Context, userID primitive.ObjectID) ([]WeekBucket, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}

	nowUTC := s.now().UTC()
	since := nowUTC.AddDate(0, 0, -histogramWindowDays)

	sessions, err := s.sessionRepo.GetByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, session := range sessions {
		counts[isoWeekKey(session.Date.UTC())]++
	}

	// Walk Monday to Monday so every week in the window gets a bucket.
	var buckets []WeekBucket
	for cursor := startOfISOWeek(since); !cursor.After(nowUTC); cursor = cursor.AddDate(0, 0, 7) {
		key := isoWeekKey(cursor)
		buckets = append(buckets, WeekBucket{Week: key, Count: counts[key]})
	}
	return buckets, nil
}

func (s *analyticsService) Exercise1RMSeries(ctx context.Context, userID, exerciseID primitive.ObjectID) ([]OneRepMaxPoint, error) {
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	since := s.now().UTC().AddDate(0, 0, -oneRepMaxWindowDays)
	sets, err := s.setRepo.GetByUserAndExerciseSince(ctx, userID, exerciseID, since)
	if err != nil {
		return nil, err
	}

	bestByDay := make(map[string]float64)
	for i := range sets {
		estimate, ok := sets[i].EstimatedOneRepMax()
		if !ok {
			continue
		}
		day := sets[i].PerformedAt.UTC().Format("2006-01-02")
		if estimate > bestByDay[day] {
			bestByDay[day] = estimate
		}
	}

	points := make([]OneRepMaxPoint, 0, len(bestByDay))
	for day, estimate := range bestByDay {
		points = append(points, OneRepMaxPoint{Date: day, OneRepMax: estimate})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (s *analyticsService) CumulativeTonnage(ctx context.Context, userID primitive.ObjectID) ([]TonnagePoint, error) {
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}

	nowUTC := s.now().UTC()
	today := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(tonnageWindowDays - 1))

	sets, err := s.setRepo.GetByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]float64)
	for i := range sets {
		day := sets[i].PerformedAt.UTC().Format("2006-01-02")
		totals[day] += sets[i].Tonnage()
	}

	points := make([]TonnagePoint, 0, tonnageWindowDays)
	for cursor := since; !cursor.After(today); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		points = append(points, TonnagePoint{Date: day, Tonnage: totals[day]})
	}
	return points, nil
}

func (s *analyticsService) ExercisesWithHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	ids, err := s.setRepo.GetLoggedExerciseIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Exercise{}, nil
	}
	return s.exerciseRepo.GetByIDs(ctx, ids)
}

// isoWeekKey formats a time as its ISO 8601 year-week, e.g. "2026-W35".
func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// startOfISOWeek returns 00:00 UTC of the Monday of t's week.
func startOfISOWeek(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -(weekday - 1))
}
