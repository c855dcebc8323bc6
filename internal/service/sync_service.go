package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"

	"backend/internal/catalog"
	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncReport lists the keys touched by one sync run, bucketed by action.
type SyncReport struct {
	Inserted    []string `json:"inserted"`
	Reactivated []string `json:"reactivated"`
	SoftDeleted []string `json:"soft_deleted"`
	Unchanged   []string `json:"unchanged"`
}

// Mutations returns how many rows the run changed. Zero on a repeat run with
// an unchanged catalog — that is the idempotence contract.
func (r *SyncReport) Mutations() int {
	return len(r.Inserted) + len(r.Reactivated) + len(r.SoftDeleted)
}

// SyncStatus is the read-only drift report between code and mirror.
type SyncStatus struct {
	CodeTotal    int      `json:"code_total"`
	StoreActive  int      `json:"store_active"`
	StoreDeleted int      `json:"store_deleted"`
	StoreTotal   int      `json:"store_total"`
	MissingInDB  []string `json:"missing_in_db"`
	ExtraInDB    []string `json:"extra_in_db"`
	InSync       bool     `json:"in_sync"`
}

// SyncService reconciles the code-declared permission catalog against the
// persisted mirror. It is the only component allowed to mutate the
// permissions table.
type SyncService interface {
	// Sync applies the full diff in one transaction. actor is the explicit
	// system actor recorded on every touched row.
	Sync(ctx context.Context, actor uuid.UUID) (*SyncReport, error)
	// Status reports the diff without mutating anything.
	Status(ctx context.Context) (*SyncStatus, error)
}

type syncService struct {
	keys      []string
	permRepo  repository.PermissionRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
	cache     EffectiveCache
}

// NewSyncService builds the synchronizer over the declared catalog keys.
// Pass catalog.Keys() in production; tests inject reduced catalogs.
func NewSyncService(
	keys []string,
	permRepo repository.PermissionRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
	cache EffectiveCache,
) SyncService {
	return &syncService{
		keys:      keys,
		permRepo:  permRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
		cache:     cache,
	}
}

func (s *syncService) Sync(ctx context.Context, actor uuid.UUID) (*SyncReport, error) {
	for _, key := range s.keys {
		if !catalog.ValidKey(key) {
			return nil, fmt.Errorf("%w: malformed catalog key %q", apperror.ErrSyncFailure, key)
		}
	}

	report := &SyncReport{
		Inserted:    []string{},
		Reactivated: []string{},
		SoftDeleted: []string{},
		Unchanged:   []string{},
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		statuses, err := s.permRepo.StatusByKey(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load permission mirror: %w", err)
		}

		codeKeys := make([]string, len(s.keys))
		copy(codeKeys, s.keys)
		sort.Strings(codeKeys)

		inCode := make(map[string]bool, len(codeKeys))
		for _, key := range codeKeys {
			inCode[key] = true
		}

		for _, key := range codeKeys {
			status, exists := statuses[key]
			switch {
			case !exists:
				perm := &model.Permission{
					Key:         key,
					Description: catalog.Describe(key),
					Status:      model.PermissionActive,
					UpdatedBy:   actor,
				}
				if err := s.permRepo.Create(txCtx, perm); err != nil {
					return fmt.Errorf("failed to insert permission %q: %w", key, err)
				}
				report.Inserted = append(report.Inserted, key)
			case status == model.PermissionDeleted:
				if err := s.permRepo.SetStatus(txCtx, key, model.PermissionActive, actor); err != nil {
					return fmt.Errorf("failed to reactivate permission %q: %w", key, err)
				}
				report.Reactivated = append(report.Reactivated, key)
			default:
				report.Unchanged = append(report.Unchanged, key)
			}
		}

		// Soft-delete active rows whose key vanished from code. Existing
		// role/user rows referencing them stay in place so a later
		// reactivation makes them effective again without extra calls.
		extra := make([]string, 0)
		for key, status := range statuses {
			if !inCode[key] && status == model.PermissionActive {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		for _, key := range extra {
			if err := s.permRepo.SetStatus(txCtx, key, model.PermissionDeleted, actor); err != nil {
				return fmt.Errorf("failed to soft-delete permission %q: %w", key, err)
			}
			report.SoftDeleted = append(report.SoftDeleted, key)
		}

		if report.Mutations() > 0 {
			details, _ := json.Marshal(report)
			audit := &model.AuditLog{
				UserID:     &actor,
				Action:     model.ActionSyncPermissions,
				EntityName: "permission catalog",
				Details:    string(details),
			}
			if err := s.auditRepo.Log(txCtx, audit); err != nil {
				return fmt.Errorf("failed to write audit log: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		// A duplicate-key race means another sync run inserted the same key
		// concurrently; the whole batch rolled back and may simply be retried.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: concurrent sync detected: %v", apperror.ErrSyncFailure, err)
		}
		return nil, fmt.Errorf("%w: %v", apperror.ErrSyncFailure, err)
	}

	if report.Mutations() > 0 {
		if s.cache != nil {
			s.cache.InvalidateAll()
		}
		s.hub.Notify("permissions.synced", map[string]interface{}{
			"inserted":     len(report.Inserted),
			"reactivated":  len(report.Reactivated),
			"soft_deleted": len(report.SoftDeleted),
		})
		log.Printf("Permission sync: %d inserted, %d reactivated, %d soft-deleted, %d unchanged",
			len(report.Inserted), len(report.Reactivated), len(report.SoftDeleted), len(report.Unchanged))
	}

	return report, nil
}

func (s *syncService) Status(ctx context.Context) (*SyncStatus, error) {
	statuses, err := s.permRepo.StatusByKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission mirror: %w", err)
	}

	inCode := make(map[string]bool, len(s.keys))
	for _, key := range s.keys {
		inCode[key] = true
	}

	status := &SyncStatus{
		CodeTotal:   len(inCode),
		StoreTotal:  len(statuses),
		MissingInDB: []string{},
		ExtraInDB:   []string{},
	}

	// Extra means active-but-gone-from-code. Soft-deleted leftovers are the
	// already-synced state, not drift.
	activeInDB := make(map[string]bool)
	for key, st := range statuses {
		switch st {
		case model.PermissionActive:
			status.StoreActive++
			activeInDB[key] = true
			if !inCode[key] {
				status.ExtraInDB = append(status.ExtraInDB, key)
			}
		case model.PermissionDeleted:
			status.StoreDeleted++
		}
	}
	for key := range inCode {
		if _, exists := statuses[key]; !exists {
			status.MissingInDB = append(status.MissingInDB, key)
		}
	}
	sort.Strings(status.MissingInDB)
	sort.Strings(status.ExtraInDB)

	status.InSync = len(activeInDB) == len(inCode)
	if status.InSync {
		for key := range inCode {
			if !activeInDB[key] {
				status.InSync = false
				break
			}
		}
	}

	return status, nil
}
