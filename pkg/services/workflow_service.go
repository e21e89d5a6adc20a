package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fisworks/product-engine/pkg/access"
	"github.com/fisworks/product-engine/pkg/apperrors"
	"github.com/fisworks/product-engine/pkg/database"
	"github.com/fisworks/product-engine/pkg/models"
	"github.com/fisworks/product-engine/pkg/repositories"
)

// WorkflowMetrics counts workflow outcomes. Implementations must be safe
// for concurrent use; a nil WorkflowMetrics disables counting.
type WorkflowMetrics interface {
	StatusTransition(from, to models.ProductStatus)
	ApprovalDecision(role models.Role, approved bool)
}

// WorkflowService is the approval state machine. Every operation reads the
// actor from the session context, runs in a single transaction (status
// mutation + audit entry + notification commit together), and triggers a
// render call-out after commit.
//
// Once a product reaches sent_to_cb it is locked: every mutating operation
// rejects it at this level, regardless of what any UI disables.
type WorkflowService interface {
	// ChangeStatus performs an explicit transition along the legal edge set.
	ChangeStatus(ctx context.Context, productID uuid.UUID, newStatus models.ProductStatus, comment string) (*models.Product, error)

	// SendForApproval validates the sender's required fields, moves
	// draft→approval, initializes the approval round and auto-approves the
	// sender's own role. One composite operation.
	SendForApproval(ctx context.Context, productID uuid.UUID) (*models.Product, error)

	// ApproveByRole signs off for the session's role. Idempotent: re-approving
	// updates comment and date. Unanimity at "approval" dispatches the product
	// straight to the regulator.
	ApproveByRole(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error)

	// RejectByRole withholds sign-off and sends the product back to draft.
	// A reason is mandatory. Other roles' approvals are left untouched.
	RejectByRole(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error)

	// RequestReturnToApproval records a non-owning role's ask to reopen the
	// approval round. Does not change status.
	RequestReturnToApproval(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error)

	// ReturnToApproval reopens the approval round: resets all four approvals,
	// moves the product to "approval" and marks pending return requests
	// processed. Product owner only.
	ReturnToApproval(ctx context.Context, productID uuid.UUID) (*models.Product, error)

	// ApprovalButton derives the workflow button for the session's role.
	ApprovalButton(ctx context.Context, productID uuid.UUID) (models.ApprovalButton, error)
}

type workflowService struct {
	db            *database.DB
	productRepo   repositories.ProductRepository
	audit         AuditService
	notifications NotificationService
	policy        *access.Policy
	notifier      ChangeNotifier
	metrics       WorkflowMetrics
	logger        *zap.Logger
}

// WorkflowServiceDeps contains dependencies for WorkflowService.
type WorkflowServiceDeps struct {
	DB            *database.DB
	ProductRepo   repositories.ProductRepository
	Audit         AuditService
	Notifications NotificationService
	Policy        *access.Policy
	Notifier      ChangeNotifier  // Optional: defaults to a logging notifier
	Metrics       WorkflowMetrics // Optional
	Logger        *zap.Logger
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(deps *WorkflowServiceDeps) WorkflowService {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewLoggingNotifier(deps.Logger)
	}
	return &workflowService{
		db:            deps.DB,
		productRepo:   deps.ProductRepo,
		audit:         deps.Audit,
		notifications: deps.Notifications,
		policy:        deps.Policy,
		notifier:      notifier,
		metrics:       deps.Metrics,
		logger:        deps.Logger.Named("workflow-service"),
	}
}

var _ WorkflowService = (*workflowService)(nil)

func (s *workflowService) ChangeStatus(ctx context.Context, productID uuid.UUID, newStatus models.ProductStatus, comment string) (*models.Product, error) {
	if !models.IsValidProductStatus(newStatus) {
		return nil, apperrors.ErrInvalidTransition
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedGet(txCtx, productID)
		if err != nil {
			return err
		}
		if err := s.applyStatus(txCtx, p, newStatus, comment, false); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, productID)
	return product, nil
}

func (s *workflowService) SendForApproval(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedGet(txCtx, productID)
		if err != nil {
			return err
		}

		// Only the sender's own required fields gate the send; nobody is
		// blocked by another role's incomplete fields.
		if err := s.policy.Validate(session.Role, p.Data); err != nil {
			return err
		}

		if err := s.applyStatus(txCtx, p, models.StatusApproval, "", false); err != nil {
			return err
		}

		// Sending counts as the sender's own sign-off.
		if err := s.approve(txCtx, session, p, "Автоматическое согласование при отправке"); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, productID)
	return product, nil
}

func (s *workflowService) ApproveByRole(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedGet(txCtx, productID)
		if err != nil {
			return err
		}
		if err := s.approve(txCtx, session, p, comment); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, productID)
	return product, nil
}

func (s *workflowService) RejectByRole(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.ErrMissingReason
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedGet(txCtx, productID)
		if err != nil {
			return err
		}

		now := time.Now()
		p.EnsureApprovals()
		// Only the rejecting role's entry is touched; prior approvals by
		// other roles survive the rollback.
		p.Approvals[session.Role] = models.ApprovalRecord{Approved: false, Comment: comment, Date: &now}

		rollbackComment := fmt.Sprintf("Отклонено: %s - %s", session.Role, comment)
		if err := s.applyStatus(txCtx, p, models.StatusDraft, rollbackComment, true); err != nil {
			return err
		}

		if err := s.audit.Log(txCtx, models.AuditActionReject, p.ID, p.Name(), map[string]any{
			"role":    session.Role,
			"comment": comment,
		}); err != nil {
			return err
		}

		message := fmt.Sprintf("%s отклонил продукт «%s»: %s", session.Role, p.Name(), comment)
		if err := s.notifications.Notify(txCtx, models.NotificationApprovalRejected,
			"Продукт отклонен", message, p.ID, p.Name()); err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.ApprovalDecision(session.Role, false)
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, productID)
	return product, nil
}

func (s *workflowService) RequestReturnToApproval(ctx context.Context, productID uuid.UUID, comment string) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	if strings.TrimSpace(comment) == "" {
		return nil, apperrors.ErrMissingReason
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedGet(txCtx, productID)
		if err != nil {
			return err
		}

		p.ReturnRequests = append(p.ReturnRequests, models.ReturnRequest{
			Role:    session.Role,
			Comment: comment,
			Date:    time.Now(),
			Status:  models.ReturnRequestPending,
		})
		if err := s.productRepo.Update(txCtx, p); err != nil {
			return err
		}

		if err := s.audit.Log(txCtx, models.AuditActionUpdate, p.ID, p.Name(), map[string]any{
			"return_request": comment,
			"role":           session.Role,
		}); err != nil {
			return err
		}

		message := fmt.Sprintf("%s запрашивает возврат продукта «%s» на согласование: %s",
			session.Role, p.Name(), comment)
		if err := s.notifications.Notify(txCtx, models.NotificationReturnRequest,
			"Запрос на возврат", message, p.ID, p.Name()); err != nil {
			return err
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, productID)
	return product, nil
}

func (s *workflowService) ReturnToApproval(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return nil, apperrors.ErrNoSession
	}
	if session.Role != models.RoleProductOwner {
		return nil, apperrors.ErrInvalidRole
	}

	var product *models.Product
	err := s.db.WithTx(ctx, func(txCtx context.Context) error {
		p, err := s.lockedGet(txCtx, productID)
		if err != nil {
			return err
		}

		// The only operation that wipes the whole approval round.
		p.ResetApprovals()

		if err := s.applyStatus(txCtx, p, models.StatusApproval, "Возвращено на повторное согласование", true); err != nil {
			return err
		}

		changed := false
		for i, rr := range p.ReturnRequests {
			if rr.Status == models.ReturnRequestPending {
				p.ReturnRequests[i].Status = models.ReturnRequestProcessed
				changed = true
			}
		}
		if changed {
			if err := s.productRepo.Update(txCtx, p); err != nil {
				return err
			}
		}
		product = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.ProductChanged(ctx, productID)
	return product, nil
}

func (s *workflowService) ApprovalButton(ctx context.Context, productID uuid.UUID) (models.ApprovalButton, error) {
	session, ok := models.GetSession(ctx)
	if !ok {
		return models.ApprovalButton{}, apperrors.ErrNoSession
	}

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return models.ApprovalButton{}, err
	}
	return models.DeriveApprovalButton(p.Status, p.RoleApproved(session.Role)), nil
}

// lockedGet loads a product and enforces the terminal lock: a product that
// has been sent to the regulator is immutable to all roles.
func (s *workflowService) lockedGet(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return nil, apperrors.ErrProductLocked
	}
	return p, nil
}

// approve records one role's sign-off and fires the auto-advance when the
// round becomes unanimous at "approval". Re-approving is last-write-wins on
// comment and date; the auto-advance cannot re-fire because the first firing
// leaves the approval status behind.
func (s *workflowService) approve(ctx context.Context, session models.Session, p *models.Product, comment string) error {
	now := time.Now()
	p.EnsureApprovals()
	p.Approvals[session.Role] = models.ApprovalRecord{Approved: true, Comment: comment, Date: &now}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return err
	}

	if err := s.audit.Log(ctx, models.AuditActionApprove, p.ID, p.Name(), map[string]any{
		"role":    session.Role,
		"comment": comment,
	}); err != nil {
		return err
	}

	message := fmt.Sprintf("%s согласовал продукт «%s»", session.Role, p.Name())
	if err := s.notifications.Notify(ctx, models.NotificationApprovalGranted,
		"Согласование получено", message, p.ID, p.Name()); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.ApprovalDecision(session.Role, true)
	}

	// Unanimity at "approval" dispatches straight to the regulator; the
	// intermediate "approved" status is never entered on this path.
	if p.AllApproved() && p.Status == models.StatusApproval {
		if err := s.applyStatus(ctx, p, models.StatusSentToCB, "Все роли согласовали", true); err != nil {
			return err
		}
		dispatch := fmt.Sprintf("Все роли согласовали продукт «%s», продукт автоматически отправлен в ЦБ", p.Name())
		if err := s.notifications.Notify(ctx, models.NotificationSentToRegulator,
			"Отправлено в ЦБ", dispatch, p.ID, p.Name()); err != nil {
			return err
		}
	}
	return nil
}

// applyStatus performs one status transition: history append, status set,
// persist, audit entry, notification. forced skips the legal-edge check for
// the two internal paths (rejection rollback, unanimous dispatch) that are
// not public edges.
func (s *workflowService) applyStatus(ctx context.Context, p *models.Product, newStatus models.ProductStatus, comment string, forced bool) error {
	session, ok := models.GetSession(ctx)
	if !ok {
		return apperrors.ErrNoSession
	}

	if !forced && !p.Status.CanTransitionTo(newStatus) {
		return apperrors.ErrInvalidTransition
	}

	from := p.Status
	p.AppendHistory(newStatus, session.Name, comment, time.Now())
	p.Status = newStatus

	// Entering the approval round initializes the four sign-off slots.
	if newStatus == models.StatusApproval {
		p.EnsureApprovals()
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return err
	}

	if err := s.audit.Log(ctx, models.AuditActionStatusChange, p.ID, p.Name(), map[string]any{
		"from":    from,
		"to":      newStatus,
		"comment": comment,
	}); err != nil {
		return err
	}

	message := fmt.Sprintf("Продукт «%s» переведен в статус «%s»", p.Name(), newStatus.Label())
	if comment != "" {
		message += ": " + comment
	}
	if err := s.notifications.Notify(ctx, models.NotificationStatusChange,
		"Изменение статуса", message, p.ID, p.Name()); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.StatusTransition(from, newStatus)
	}

	s.logger.Info("status changed",
		zap.String("product_id", p.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(newStatus)),
		zap.String("changed_by", session.Name))
	return nil
}
