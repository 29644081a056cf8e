package workflow_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/workflow"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests CanTransition
// ──────────────────────────────────────────────────────────────────────────────

func TestCanTransition_Requisicion(t *testing.T) {
	// Cualquier rol puede enviar el borrador.
	assert.NoError(t, workflow.CanTransition(entity.ApprovalKindRequisition,
		entity.ReqStatusDraft, entity.ReqStatusPending, entity.RoleAlmacenista))

	// Solo revisores deciden.
	assert.NoError(t, workflow.CanTransition(entity.ApprovalKindRequisition,
		entity.ReqStatusPending, entity.ReqStatusApproved, entity.RoleSupervisor))
	err := workflow.CanTransition(entity.ApprovalKindRequisition,
		entity.ReqStatusPending, entity.ReqStatusApproved, entity.RoleAlmacenista)
	assert.True(t, errors.Is(err, domain.ErrForbidden), "almacenista no decide aprobaciones")
}

func TestCanTransition_PasoInexistente(t *testing.T) {
	// REJECTED es terminal: no hay transición de vuelta.
	err := workflow.CanTransition(entity.ApprovalKindRequisition,
		entity.ReqStatusRejected, entity.ReqStatusPending, entity.RoleAdmin)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))

	err = workflow.CanTransition(entity.ApprovalKindTransfer,
		entity.TxStatusCompleted, entity.TxStatusRejected, entity.RoleAdmin)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), "un traslado aplicado es inmutable")
}

func TestHasImplicitApproval(t *testing.T) {
	assert.True(t, workflow.HasImplicitApproval(entity.RoleSupervisor),
		"los revisores contabilizan sobre-entregas sin estacionar")
	assert.True(t, workflow.HasImplicitApproval(entity.RoleAdmin))
	assert.False(t, workflow.HasImplicitApproval(entity.RoleAlmacenista))
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Decide
// ──────────────────────────────────────────────────────────────────────────────

func pendingRecord() *entity.ApprovalRecord {
	return &entity.ApprovalRecord{
		ID:          "rec-1",
		EntityKind:  entity.ApprovalKindTransfer,
		EntityID:    "trf-1",
		RequestedBy: "user-1",
		Decision:    entity.DecisionPending,
		RequestedAt: time.Now(),
	}
}

func TestDecide_Aprobar(t *testing.T) {
	rec := pendingRecord()
	now := time.Now()
	require.NoError(t, workflow.Decide(rec, "sup-1", entity.RoleSupervisor, entity.DecisionApproved, "", now))

	assert.Equal(t, entity.DecisionApproved, rec.Decision)
	require.NotNil(t, rec.ReviewedBy)
	assert.Equal(t, "sup-1", *rec.ReviewedBy)
	require.NotNil(t, rec.DecidedAt)
}

func TestDecide_RechazoSinMotivo(t *testing.T) {
	rec := pendingRecord()
	err := workflow.Decide(rec, "sup-1", entity.RoleSupervisor, entity.DecisionRejected, "", time.Now())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "el motivo de rechazo es obligatorio")
	assert.Equal(t, entity.DecisionPending, rec.Decision, "el registro no debe mutar")
}

func TestDecide_RolSinPermiso(t *testing.T) {
	rec := pendingRecord()
	err := workflow.Decide(rec, "alm-1", entity.RoleAlmacenista, entity.DecisionApproved, "", time.Now())
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestDecide_NoReDecision(t *testing.T) {
	rec := pendingRecord()
	require.NoError(t, workflow.Decide(rec, "sup-1", entity.RoleSupervisor, entity.DecisionApproved, "", time.Now()))

	err := workflow.Decide(rec, "adm-1", entity.RoleAdmin, entity.DecisionRejected, "cambio de opinión", time.Now())
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition), "un registro decidido no admite re-decisión")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests DeliveryStatus / EnsureDeliveryPostable
// ──────────────────────────────────────────────────────────────────────────────

func parkedDelivery() *entity.Transaction {
	return &entity.Transaction{
		ID:     "dlv-1",
		Kind:   entity.TxKindDelivery,
		Status: entity.TxStatusPendingApproval,
		Lines: []entity.TransactionLine{
			{ID: "l1", OverDelivery: true},
			{ID: "l2", OverDelivery: true},
			{ID: "l3"},
		},
	}
}

func approved(lineID string) *entity.ApprovalRecord {
	return &entity.ApprovalRecord{
		EntityKind: entity.ApprovalKindOverDeliveryLine,
		EntityID:   lineID,
		Decision:   entity.DecisionApproved,
	}
}

// El estado visible se deriva de los hechos: cabecera + registros por línea.
func TestDeliveryStatus_Derivado(t *testing.T) {
	tx := parkedDelivery()

	// Sin registros decididos → sigue pendiente.
	assert.Equal(t, entity.TxStatusPendingApproval, workflow.DeliveryStatus(tx, nil))

	// Una línea aprobada no basta: ambas deben estarlo.
	assert.Equal(t, entity.TxStatusPendingApproval,
		workflow.DeliveryStatus(tx, []*entity.ApprovalRecord{approved("l1")}))

	// Todas aprobadas → el estado vuelve al de la cabecera.
	assert.Equal(t, entity.TxStatusPendingApproval,
		workflow.DeliveryStatus(tx, []*entity.ApprovalRecord{approved("l1"), approved("l2")}))

	// Cualquier rechazo domina.
	rejected := &entity.ApprovalRecord{EntityID: "l2", Decision: entity.DecisionRejected}
	assert.Equal(t, entity.TxStatusRejected,
		workflow.DeliveryStatus(tx, []*entity.ApprovalRecord{approved("l1"), rejected}))
}

func TestEnsureDeliveryPostable(t *testing.T) {
	tx := parkedDelivery()

	// Revisión pendiente → bloqueada globalmente, incluso para revisores.
	err := workflow.EnsureDeliveryPostable(tx, []*entity.ApprovalRecord{approved("l1")}, entity.RoleAlmacenista)
	assert.True(t, errors.Is(err, domain.ErrApprovalRequired))
	pending := &entity.ApprovalRecord{EntityID: "l2", Decision: entity.DecisionPending}
	err = workflow.EnsureDeliveryPostable(tx,
		[]*entity.ApprovalRecord{approved("l1"), pending}, entity.RoleSupervisor)
	assert.True(t, errors.Is(err, domain.ErrApprovalRequired))

	// Todas las líneas aprobadas → contabilizable.
	assert.NoError(t, workflow.EnsureDeliveryPostable(tx,
		[]*entity.ApprovalRecord{approved("l1"), approved("l2")}, entity.RoleAlmacenista))

	// Sin registros: el almacenista queda bloqueado, el revisor aprueba
	// implícitamente al contabilizar.
	draft := parkedDelivery()
	draft.Status = entity.TxStatusDraft
	err = workflow.EnsureDeliveryPostable(draft, nil, entity.RoleAlmacenista)
	assert.True(t, errors.Is(err, domain.ErrApprovalRequired))
	assert.NoError(t, workflow.EnsureDeliveryPostable(draft, nil, entity.RoleSupervisor))

	// Rechazada → terminal.
	tx.Status = entity.TxStatusRejected
	err = workflow.EnsureDeliveryPostable(tx, nil, entity.RoleSupervisor)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))

	// Ya contabilizada → no se re-contabiliza.
	posted := &entity.Transaction{Kind: entity.TxKindDelivery, Status: entity.TxStatusPosted}
	err = workflow.EnsureDeliveryPostable(posted, nil, entity.RoleSupervisor)
	assert.True(t, errors.Is(err, domain.ErrInvalidStateTransition))
}
