package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LuqmanKt98/hangout-app/events"
	"github.com/LuqmanKt98/hangout-app/models"
	"github.com/LuqmanKt98/hangout-app/timewindow"
	"github.com/LuqmanKt98/hangout-app/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxActivityTags = 5

// AvailabilityService owns availability windows and their share grants.
type AvailabilityService struct {
	db  *gorm.DB
	bus events.Bus
}

func NewAvailabilityService(db *gorm.DB, bus events.Bus) *AvailabilityService {
	return &AvailabilityService{db: db, bus: bus}
}

// normalizeClock validates an "HH:MM" or "HH:MM:SS" string and returns the
// canonical "HH:MM:00" form that gets stored.
func normalizeClock(raw string) (string, error) {
	c, err := timewindow.ParseClock(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTimeRange, err)
	}
	return c.String(), nil
}

func normalizeTags(tags []string) models.StringList {
	out := make(models.StringList, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == maxActivityTags {
			break
		}
	}
	return out
}

func (s *AvailabilityService) Create(ctx context.Context, userID uuid.UUID, req models.CreateAvailabilityRequest) (*models.Availability, error) {
	if _, err := timewindow.ParseDate(req.Date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidTimeRange, req.Date)
	}
	start, err := normalizeClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := normalizeClock(req.EndTime)
	if err != nil {
		return nil, err
	}
	if start == end {
		return nil, fmt.Errorf("%w: window must not be zero-length", ErrInvalidTimeRange)
	}
	if !req.EnergyLevel.Valid() {
		return nil, fmt.Errorf("%w: unknown energy level %q", ErrInvalidInput, req.EnergyLevel)
	}

	avail := models.Availability{
		UserID:       userID,
		Date:         req.Date,
		StartTime:    start,
		EndTime:      end,
		EnergyLevel:  req.EnergyLevel,
		ActivityTags: normalizeTags(req.Tags),
		IsActive:     true,
	}

	friendIDs, err := utils.ParseUUIDs(req.FriendIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	groupIDs, err := utils.ParseUUIDs(req.GroupIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&avail).Error; err != nil {
			return err
		}
		return createShares(tx, avail.ID, friendIDs, groupIDs)
	})
	if err != nil {
		return nil, err
	}

	s.publishChanged(ctx, userID, avail.ID, "created")
	return &avail, nil
}

// createShares inserts one grant row per target. The foreign keys on the
// grant columns reject unknown ids; the whole surrounding transaction rolls
// back, so no partial grant set survives a bad id.
func createShares(tx *gorm.DB, availID uuid.UUID, friendIDs, groupIDs []uuid.UUID) error {
	for _, fid := range friendIDs {
		fid := fid
		share := models.AvailabilityShare{AvailabilityID: availID, SharedWithUserID: &fid}
		if err := tx.Create(&share).Error; err != nil {
			return fmt.Errorf("%w: friend %s: %v", ErrInvalidInput, fid, err)
		}
	}
	for _, gid := range groupIDs {
		gid := gid
		share := models.AvailabilityShare{AvailabilityID: availID, SharedWithGroupID: &gid}
		if err := tx.Create(&share).Error; err != nil {
			return fmt.Errorf("%w: group %s: %v", ErrInvalidInput, gid, err)
		}
	}
	return nil
}

// owned loads the window and enforces ownership. Non-owners get ErrNotFound
// rather than ErrForbidden so they can't probe which ids exist.
func (s *AvailabilityService) owned(ctx context.Context, userID, availID uuid.UUID) (*models.Availability, error) {
	var avail models.Availability
	if err := s.db.WithContext(ctx).First(&avail, "id = ?", availID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if avail.UserID != userID {
		return nil, ErrNotFound
	}
	return &avail, nil
}

func (s *AvailabilityService) Update(ctx context.Context, userID, availID uuid.UUID, req models.UpdateAvailabilityRequest) (*models.Availability, error) {
	avail, err := s.owned(ctx, userID, availID)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		if _, err := timewindow.ParseDate(*req.Date); err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrInvalidTimeRange, *req.Date)
		}
		avail.Date = *req.Date
	}
	if req.StartTime != nil {
		start, err := normalizeClock(*req.StartTime)
		if err != nil {
			return nil, err
		}
		avail.StartTime = start
	}
	if req.EndTime != nil {
		end, err := normalizeClock(*req.EndTime)
		if err != nil {
			return nil, err
		}
		avail.EndTime = end
	}
	if avail.StartTime == avail.EndTime {
		return nil, fmt.Errorf("%w: window must not be zero-length", ErrInvalidTimeRange)
	}
	if req.EnergyLevel != nil {
		if !req.EnergyLevel.Valid() {
			return nil, fmt.Errorf("%w: unknown energy level %q", ErrInvalidInput, *req.EnergyLevel)
		}
		avail.EnergyLevel = *req.EnergyLevel
	}
	if req.Tags != nil {
		avail.ActivityTags = normalizeTags(*req.Tags)
	}
	if req.IsActive != nil {
		avail.IsActive = *req.IsActive
	}

	if err := s.db.WithContext(ctx).Save(avail).Error; err != nil {
		return nil, err
	}

	s.publishChanged(ctx, userID, avail.ID, "updated")
	return avail, nil
}

func (s *AvailabilityService) Delete(ctx context.Context, userID, availID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, availID); err != nil {
		return err
	}

	// Resolve the audience before the grants go away with the window.
	audience := s.audienceFor(ctx, userID, availID)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("availability_id = ?", availID).Delete(&models.AvailabilityShare{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Availability{}, "id = ?", availID).Error
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.Event{
		Topic:    events.TopicAvailabilityChanged,
		Audience: audience,
		Payload: map[string]string{
			"availability_id": availID.String(),
			"user_id":         userID.String(),
			"action":          "deleted",
		},
	})
	return nil
}

// ListOwn returns the caller's windows that have not yet ended, newest date
// first. A window running past midnight stays listed until its end on the
// following day.
func (s *AvailabilityService) ListOwn(ctx context.Context, userID uuid.UUID) ([]models.Availability, error) {
	var all []models.Availability
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, start_time asc").
		Find(&all).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	live := make([]models.Availability, 0, len(all))
	for _, a := range all {
		if !timewindow.WindowExpired(a.Date, a.StartTime, a.EndTime, now) {
			live = append(live, a)
		}
	}
	return live, nil
}

// ListSharedWithMe returns every active, unexpired window the caller can see
// through a direct grant or membership of a granted group. A window shared
// both ways appears once.
func (s *AvailabilityService) ListSharedWithMe(ctx context.Context, userID uuid.UUID) ([]models.AvailabilityResponse, error) {
	var groupIDs []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &groupIDs).Error
	if err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Model(&models.AvailabilityShare{}).
		Where("shared_with_user_id = ?", userID)
	if len(groupIDs) > 0 {
		q = q.Or("shared_with_group_id IN ?", groupIDs)
	}
	var availIDs []uuid.UUID
	if err := q.Distinct().Pluck("availability_id", &availIDs).Error; err != nil {
		return nil, err
	}
	if len(availIDs) == 0 {
		return []models.AvailabilityResponse{}, nil
	}

	var windows []models.Availability
	err = s.db.WithContext(ctx).Preload("User").
		Where("id IN ? AND user_id <> ? AND is_active = ?", availIDs, userID, true).
		Order("date asc, start_time asc").
		Find(&windows).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]models.AvailabilityResponse, 0, len(windows))
	for _, w := range windows {
		if timewindow.WindowExpired(w.Date, w.StartTime, w.EndTime, now) {
			continue
		}
		out = append(out, models.AvailabilityResponse{Availability: w, Profile: w.User.ToSummary()})
	}
	return out, nil
}

// ShareWith replaces the window's grant set wholesale. Readers between the
// delete and the new inserts see no grants; the window itself never leaks
// to anyone outside the new set.
func (s *AvailabilityService) ShareWith(ctx context.Context, userID, availID uuid.UUID, req models.ShareAvailabilityRequest) error {
	if _, err := s.owned(ctx, userID, availID); err != nil {
		return err
	}

	friendIDs, err := utils.ParseUUIDs(req.FriendIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	groupIDs, err := utils.ParseUUIDs(req.GroupIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("availability_id = ?", availID).Delete(&models.AvailabilityShare{}).Error; err != nil {
			return err
		}
		return createShares(tx, availID, friendIDs, groupIDs)
	})
	if err != nil {
		return err
	}

	s.publishChanged(ctx, userID, availID, "shared")
	return nil
}

// SharedGrantsFor reports who a window is currently shared with.
func (s *AvailabilityService) SharedGrantsFor(ctx context.Context, userID, availID uuid.UUID) (*models.ShareGrantsResponse, error) {
	if _, err := s.owned(ctx, userID, availID); err != nil {
		return nil, err
	}

	var shares []models.AvailabilityShare
	if err := s.db.WithContext(ctx).Where("availability_id = ?", availID).Find(&shares).Error; err != nil {
		return nil, err
	}

	resp := models.ShareGrantsResponse{
		Friends: []models.ProfileSummary{},
		Groups:  []models.GroupSummary{},
	}
	var friendIDs, groupIDs []uuid.UUID
	for _, sh := range shares {
		if sh.SharedWithUserID != nil {
			friendIDs = append(friendIDs, *sh.SharedWithUserID)
		}
		if sh.SharedWithGroupID != nil {
			groupIDs = append(groupIDs, *sh.SharedWithGroupID)
		}
	}

	if len(friendIDs) > 0 {
		var users []models.User
		if err := s.db.WithContext(ctx).Where("id IN ?", friendIDs).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			resp.Friends = append(resp.Friends, u.ToSummary())
		}
	}
	if len(groupIDs) > 0 {
		var groups []models.Group
		if err := s.db.WithContext(ctx).Where("id IN ?", groupIDs).Find(&groups).Error; err != nil {
			return nil, err
		}
		for _, g := range groups {
			resp.Groups = append(resp.Groups, models.GroupSummary{ID: g.ID, Name: g.Name, Color: g.Color})
		}
	}
	return &resp, nil
}

// SetAvailableNow creates (or reuses) a same-day window starting now and
// mirrors the state onto the profile. With no explicit times the window runs
// for DurationMinutes, defaulting to two hours.
func (s *AvailabilityService) SetAvailableNow(ctx context.Context, userID uuid.UUID, req models.AvailableNowRequest) (*models.Availability, error) {
	energy := req.EnergyLevel
	if energy == "" {
		energy = models.EnergyHigh
	}
	if !energy.Valid() {
		return nil, fmt.Errorf("%w: unknown energy level %q", ErrInvalidInput, energy)
	}

	now := time.Now()
	date := now.Format("2006-01-02")
	start := req.StartTime
	end := req.EndTime
	if start == "" || end == "" {
		dur := req.DurationMinutes
		if dur <= 0 {
			dur = 120
		}
		until := now.Add(time.Duration(dur) * time.Minute)
		start = timewindow.Clock(now.Hour()*60 + now.Minute()).String()
		end = timewindow.Clock(until.Hour()*60 + until.Minute()).String()
	} else {
		var err error
		if start, err = normalizeClock(start); err != nil {
			return nil, err
		}
		if end, err = normalizeClock(end); err != nil {
			return nil, err
		}
	}
	if start == end {
		return nil, fmt.Errorf("%w: window must not be zero-length", ErrInvalidTimeRange)
	}

	friendIDs, err := utils.ParseUUIDs(req.FriendIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var avail models.Availability
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Tapping "available now" twice with the same window must not
		// stack duplicates.
		err := tx.Where("user_id = ? AND date = ? AND start_time = ? AND end_time = ?",
			userID, date, start, end).First(&avail).Error
		switch {
		case err == nil:
			avail.IsActive = true
			avail.EnergyLevel = energy
			if err := tx.Save(&avail).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			avail = models.Availability{
				UserID:       userID,
				Date:         date,
				StartTime:    start,
				EndTime:      end,
				EnergyLevel:  energy,
				ActivityTags: models.StringList{},
				IsActive:     true,
			}
			if err := tx.Create(&avail).Error; err != nil {
				return err
			}
			if err := createShares(tx, avail.ID, friendIDs, nil); err != nil {
				return err
			}
		default:
			return err
		}

		startClock, err := timewindow.ParseClock(start)
		if err != nil {
			return err
		}
		endClock, err := timewindow.ParseClock(end)
		if err != nil {
			return err
		}
		until, err := timewindow.EffectiveEnd(date, startClock, endClock)
		if err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"available_now":        true,
			"available_now_energy": energy,
			"available_now_until":  until,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.publishChanged(ctx, userID, avail.ID, "available_now")
	return &avail, nil
}

// ClearAvailableNow drops the profile flag. The backing window stays; it
// expires on its own schedule unless the owner deletes it.
func (s *AvailabilityService) ClearAvailableNow(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"available_now":        false,
		"available_now_energy": "",
		"available_now_until":  nil,
	}).Error
}

// audienceFor resolves everyone a window's grants reach, owner excluded.
func (s *AvailabilityService) audienceFor(ctx context.Context, ownerID, availID uuid.UUID) []uuid.UUID {
	var shares []models.AvailabilityShare
	if err := s.db.WithContext(ctx).Where("availability_id = ?", availID).Find(&shares).Error; err != nil {
		return nil
	}

	seen := make(map[uuid.UUID]bool)
	var groupIDs []uuid.UUID
	for _, sh := range shares {
		if sh.SharedWithUserID != nil {
			seen[*sh.SharedWithUserID] = true
		}
		if sh.SharedWithGroupID != nil {
			groupIDs = append(groupIDs, *sh.SharedWithGroupID)
		}
	}
	if len(groupIDs) > 0 {
		var memberIDs []uuid.UUID
		if err := s.db.WithContext(ctx).Model(&models.GroupMember{}).
			Where("group_id IN ?", groupIDs).
			Pluck("user_id", &memberIDs).Error; err == nil {
			for _, id := range memberIDs {
				seen[id] = true
			}
		}
	}
	delete(seen, ownerID)

	audience := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		audience = append(audience, id)
	}
	return audience
}

func (s *AvailabilityService) publishChanged(ctx context.Context, ownerID, availID uuid.UUID, action string) {
	s.bus.Publish(ctx, events.Event{
		Topic:    events.TopicAvailabilityChanged,
		Audience: s.audienceFor(ctx, ownerID, availID),
		Payload: map[string]string{
			"availability_id": availID.String(),
			"user_id":         ownerID.String(),
			"action":          action,
		},
	})
}
