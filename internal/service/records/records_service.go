package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/repository/mongodb"
)

var (
	// ErrDayLocked means a pollero tried to re-edit a (shed, day) that
	// already has a record.
	ErrDayLocked = errors.New("record already exists for this shed and day")
	// ErrShedNotAllowed means the user touched a shed outside their assignment.
	ErrShedNotAllowed = errors.New("shed not assigned to this user")
	// ErrUnknownCategory means a counts key outside the fixed category set.
	ErrUnknownCategory = errors.New("unknown egg category")
	// ErrInvalidDate means a date not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

// Service enforces role policy and schema validation in front of the daily
// egg record store.
type Service struct {
	store  mongodb.EggRecordRepository
	logger *zap.Logger
}

// NewService wires a new records service instance.
func NewService(store mongodb.EggRecordRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// GetDay returns the record for the given key, or nil when absent.
func (s *Service) GetDay(ctx context.Context, user *models.User, farmID, shedID, date string) (*models.EggRecord, error) {
	if err := validateKey(shedID, date); err != nil {
		return nil, err
	}
	if err := checkShedAccess(user, shedID); err != nil {
		return nil, err
	}
	return s.store.FetchDay(ctx, farmID, shedID, date)
}

// StartDay returns the day's record, creating a zeroed one when absent. Safe
// to call repeatedly for the same key.
func (s *Service) StartDay(ctx context.Context, user *models.User, farmID, shedID, date string) (*models.EggRecord, error) {
	if err := validateKey(shedID, date); err != nil {
		return nil, err
	}
	if err := checkShedAccess(user, shedID); err != nil {
		return nil, err
	}
	return s.store.FetchOrCreate(ctx, farmID, shedID, date, user.UID)
}

// SaveCounts performs the absolute write: the given counts replace the whole
// map, categories omitted reset to zero. A pollero may save over a record
// they opened themselves (taps create the record before the save lands) but
// is blocked from re-entering a day closed by someone else. Supervisors and
// encargados may overwrite freely.
func (s *Service) SaveCounts(ctx context.Context, user *models.User, farmID, shedID, date string, counts models.EggCounts, notes string) error {
	if err := validateKey(shedID, date); err != nil {
		return err
	}
	if err := checkShedAccess(user, shedID); err != nil {
		return err
	}
	if err := validateCategories(counts); err != nil {
		return err
	}

	if user.Role == models.RolePollero {
		existing, err := s.store.FetchDay(ctx, farmID, shedID, date)
		if err != nil {
			return err
		}
		if existing != nil && existing.UserID != user.UID {
			return ErrDayLocked
		}
	}

	if err := s.store.UpsertCounts(ctx, farmID, shedID, date, counts, notes, user.UID); err != nil {
		return err
	}

	s.logger.Info("counts saved",
		zap.String("farm_id", farmID),
		zap.String("shed_id", shedID),
		zap.String("date", date),
		zap.String("user_id", user.UID))
	return nil
}

// Increment applies delta to one category and returns the resulting value,
// never negative. Creates the day's record on the first tap.
func (s *Service) Increment(ctx context.Context, user *models.User, farmID, shedID, date string, key models.EggKey, delta int) (int, error) {
	if err := validateKey(shedID, date); err != nil {
		return 0, err
	}
	if err := checkShedAccess(user, shedID); err != nil {
		return 0, err
	}
	if !key.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCategory, key)
	}

	return s.store.Increment(ctx, farmID, shedID, date, key, delta, user.UID)
}

// ListRange returns the shed's records in the inclusive date range.
func (s *Service) ListRange(ctx context.Context, user *models.User, farmID, shedID, startDate, endDate string, descending bool) ([]models.EggRecord, error) {
	if err := validateKey(shedID, startDate); err != nil {
		return nil, err
	}
	if _, err := time.Parse(models.DateLayout, endDate); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDate, endDate)
	}
	if err := checkShedAccess(user, shedID); err != nil {
		return nil, err
	}
	return s.store.ListByDateRange(ctx, farmID, shedID, startDate, endDate, descending)
}

// ListLastDays returns records for the window of calendar days ending at
// endDate inclusive.
func (s *Service) ListLastDays(ctx context.Context, user *models.User, farmID, shedID, endDate string, days int) ([]models.EggRecord, error) {
	if err := validateKey(shedID, endDate); err != nil {
		return nil, err
	}
	if err := checkShedAccess(user, shedID); err != nil {
		return nil, err
	}
	return s.store.ListLastNDays(ctx, farmID, shedID, endDate, days)
}

func validateKey(shedID, date string) error {
	if shedID == "" {
		return errors.New("shedId must not be empty")
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, date)
	}
	return nil
}

func validateCategories(counts models.EggCounts) error {
	for k := range counts {
		if !k.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, k)
		}
	}
	return nil
}

func checkShedAccess(user *models.User, shedID string) error {
	if user == nil {
		return errors.New("no user in session")
	}
	if user.Role == models.RolePollero && user.AssignedShed != shedID {
		return ErrShedNotAllowed
	}
	return nil
}
