package roomblocks

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"access-sync/core/cloudbeds"
	"access-sync/core/property"
	"access-sync/core/reconcile"
	"access-sync/feature/locks"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const pinAttempts = 50

// ErrProvider marks a lock provider failure.
var ErrProvider = errors.New("roomblocks: lock provider failure")

// Status is the result of handling one notification.
type Status string

const (
	StatusCreated  Status = "created"
	StatusExisting Status = "existing"
	StatusSkipped  Status = "skipped"
	StatusDeleted  Status = "deleted"
	StatusPending  Status = "pending"
)

// Result describes what a notification did.
type Result struct {
	Status Status
	// Code is the PIN programmed for a newly created block code.
	Code   string
	Reason string
	Report *reconcile.Report
}

// Annotator writes a note back onto a room block.
type Annotator interface {
	PutRoomBlock(ctx context.Context, roomBlockID, reason string) error
}

// LockLookup finds the lock of a room or a lock by id.
type LockLookup interface {
	ForRoom(ctx context.Context, roomID string) (*locks.Lock, error)
	Get(ctx context.Context, id uint) (*locks.Lock, error)
}

// Service handles room block notifications.
type Service struct {
	store     *Store
	locks     LockLookup
	resolver  reconcile.Resolver
	annotator Annotator
	rules     *property.Rules
	cfg       Config
	start     property.Clock
	end       property.Clock
	logger    *zap.Logger

	newPIN func() (string, error)
	now    func() time.Time
	group  singleflight.Group
}

// NewService creates a room block service. annotator may be nil.
func NewService(store *Store, lookup LockLookup, resolver reconcile.Resolver, annotator Annotator, rules *property.Rules, cfg Config, logger *zap.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	start, _ := property.ParseClock(cfg.StartTime)
	end, _ := property.ParseClock(cfg.EndTime)
	return &Service{
		store:     store,
		locks:     lookup,
		resolver:  resolver,
		annotator: annotator,
		rules:     rules,
		cfg:       cfg,
		start:     start,
		end:       end,
		logger:    logger.With(zap.String("scope", string(reconcile.ScopeRoomBlock))),
		newPIN:    randomPIN,
		now:       time.Now,
	}, nil
}

// Store returns the binding store.
func (s *Service) Store() *Store {
	return s.store
}

// Created programs a code for a new matching block. Repeated deliveries for
// the same block return StatusExisting without touching the lock.
func (s *Service) Created(ctx context.Context, evt cloudbeds.BlockCreated) (*Result, error) {
	if !s.cfg.Matches(evt.RoomBlockType, evt.RoomBlockReason) {
		return &Result{Status: StatusSkipped, Reason: "block type or reason not handled"}, nil
	}
	if err := cloudbeds.Validate(&evt); err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do("created:"+string(evt.RoomBlockID), func() (any, error) {
		return s.create(ctx, evt)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (s *Service) create(ctx context.Context, evt cloudbeds.BlockCreated) (*Result, error) {
	blockID := string(evt.RoomBlockID)
	log := s.logger.With(zap.String("room_block_id", blockID))

	if _, err := s.store.Get(ctx, blockID); err == nil {
		return &Result{Status: StatusExisting, Reason: "block already has a code"}, nil
	} else if !errors.Is(err, ErrBindingNotFound) {
		return nil, fmt.Errorf("load binding: %w", err)
	}

	lock, err := s.locks.ForRoom(ctx, string(evt.Rooms[0].RoomID))
	if err != nil {
		return nil, err
	}

	window, err := s.rules.DayWindow(evt.StartDate, evt.EndDate, s.start, s.end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cloudbeds.ErrMalformedRecord, err)
	}

	report := reconcile.NewReport(reconcile.ScopeRoomBlock, false, s.now())
	exec := reconcile.NewExecutor(s.resolver, report, reconcile.Options{Now: s.now, Logger: s.logger})
	ref := lock.Ref()

	inUse, err := exec.PINsInUse(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}
	pin, err := s.pickPIN(inUse)
	if err != nil {
		return nil, err
	}

	codeID, err := exec.Create(ctx, ref, reconcile.Desired{
		Key:    blockID,
		PIN:    pin,
		Name:   "Room block " + blockID,
		Window: window,
	})
	if errors.Is(err, reconcile.ErrWindowElapsed) {
		report.Finish(s.now())
		return &Result{Status: StatusSkipped, Reason: "block already ended", Report: report}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	binding := &RoomBlockCode{RoomBlockID: blockID, LockID: lock.ID, AccessCodeID: codeID}
	if err := s.store.Create(ctx, binding); err != nil {
		// An unbound code would never be cleaned up.
		if rmErr := exec.Remove(ctx, ref, blockID, codeID, "binding not stored"); rmErr != nil {
			log.Error("Removing unbound code failed", zap.String("code_id", codeID), zap.Error(rmErr))
		}
		return nil, fmt.Errorf("store binding: %w", err)
	}

	if s.annotator != nil {
		if err := s.annotator.PutRoomBlock(ctx, blockID, "Code: "+pin); err != nil {
			log.Warn("Annotating room block failed", zap.Error(err))
		}
	}

	report.Finish(s.now())
	log.Info("Room block code created", zap.Uint("lock_id", lock.ID), zap.String("code_id", codeID))
	return &Result{Status: StatusCreated, Code: pin, Report: report}, nil
}

// Deleted removes the code of a deleted block. A binding whose lock is gone
// is dropped; one whose remote delete fails is tombstoned for Sweep.
func (s *Service) Deleted(ctx context.Context, evt cloudbeds.BlockDeleted) (*Result, error) {
	if err := cloudbeds.Validate(&evt); err != nil {
		return nil, err
	}

	report := reconcile.NewReport(reconcile.ScopeRoomBlock, false, s.now())
	exec := reconcile.NewExecutor(s.resolver, report, reconcile.Options{Now: s.now, Logger: s.logger})
	res, err := s.releaseBlock(ctx, exec, string(evt.RoomBlockID))
	if err != nil {
		return nil, err
	}
	report.Finish(s.now())
	return res, nil
}

// Sweep retries the remote delete of every tombstoned binding.
func (s *Service) Sweep(ctx context.Context, exec *reconcile.Executor) error {
	removed, err := s.store.Removed(ctx)
	if err != nil {
		return fmt.Errorf("load removed bindings: %w", err)
	}
	for _, b := range removed {
		if _, err := s.releaseBlock(ctx, exec, b.RoomBlockID); err != nil {
			exec.Fail(reconcile.ActionDelete, b.RoomBlockID, b.LockID, err)
		}
	}
	return nil
}

// releaseBlock releases the binding of blockID. Calls for one block share a
// single execution, whether they come from a notification or from Sweep.
func (s *Service) releaseBlock(ctx context.Context, exec *reconcile.Executor, blockID string) (*Result, error) {
	v, err, _ := s.group.Do("deleted:"+blockID, func() (any, error) {
		b, err := s.store.Get(ctx, blockID)
		if errors.Is(err, ErrBindingNotFound) {
			return &Result{Status: StatusSkipped, Reason: "block has no code"}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load binding: %w", err)
		}
		status, err := s.release(ctx, exec, *b)
		if err != nil {
			return nil, err
		}
		return &Result{Status: status, Report: exec.Report()}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (s *Service) release(ctx context.Context, exec *reconcile.Executor, b RoomBlockCode) (Status, error) {
	lock, err := s.locks.Get(ctx, b.LockID)
	if errors.Is(err, locks.ErrLockNotFound) {
		if exec.DryRun() {
			exec.Dropped(b.RoomBlockID, b.LockID, "lock no longer provisioned")
			return StatusDeleted, nil
		}
		if err := s.store.Delete(ctx, b.ID); err != nil {
			return "", fmt.Errorf("delete binding: %w", err)
		}
		exec.Dropped(b.RoomBlockID, b.LockID, "lock no longer provisioned")
		return StatusDeleted, nil
	}
	if err != nil {
		return "", fmt.Errorf("load lock: %w", err)
	}

	err = exec.Remove(ctx, lock.Ref(), b.RoomBlockID, b.AccessCodeID, "room block deleted")
	if errors.Is(err, reconcile.ErrDryRun) {
		return StatusDeleted, nil
	}
	if err != nil {
		if !b.Removed() {
			if err := s.store.MarkRemoved(ctx, b.ID, s.now()); err != nil {
				return "", fmt.Errorf("tombstone binding: %w", err)
			}
		}
		return StatusPending, nil
	}

	if err := s.store.Delete(ctx, b.ID); err != nil {
		return "", fmt.Errorf("delete binding: %w", err)
	}
	return StatusDeleted, nil
}

func (s *Service) pickPIN(inUse map[string]struct{}) (string, error) {
	for i := 0; i < pinAttempts; i++ {
		pin, err := s.newPIN()
		if err != nil {
			return "", fmt.Errorf("generate pin: %w", err)
		}
		if _, taken := inUse[pin]; !taken {
			return pin, nil
		}
	}
	return "", fmt.Errorf("no free pin after %d attempts", pinAttempts)
}

// randomPIN returns a uniformly random four-digit PIN without a leading zero.
func randomPIN() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", 1000+n.Int64()), nil
}
