package workflow

import (
	"time"

	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain"
	"github.com/alkholigroup2020/stock-management-system-sub010/internal/domain/entity"
)

// Máquina de estados de aprobación compartida por requisiciones, órdenes,
// traslados y sobre-entregas. Todas comparten la misma forma:
// DRAFT → PENDING → {APPROVED, REJECTED}; REJECTED permite clonar a un nuevo
// borrador, nunca resucitar el registro rechazado.

// transition define un paso permitido y los roles que pueden ejecutarlo.
// roles vacío = cualquier rol autenticado.
type transition struct {
	to    string
	roles []string
}

var reviewerRoles = []string{entity.RoleSupervisor, entity.RoleAdmin}

// Tabla de transiciones por clase de entidad.
var transitions = map[string]map[string][]transition{
	entity.ApprovalKindRequisition: {
		entity.ReqStatusDraft:    {{to: entity.ReqStatusPending}},
		entity.ReqStatusPending:  {{to: entity.ReqStatusApproved, roles: reviewerRoles}, {to: entity.ReqStatusRejected, roles: reviewerRoles}},
		entity.ReqStatusApproved: {{to: entity.ReqStatusClosed}},
	},
	entity.ApprovalKindTransfer: {
		entity.TxStatusPendingApproval: {{to: entity.TxStatusCompleted, roles: reviewerRoles}, {to: entity.TxStatusRejected, roles: reviewerRoles}},
	},
	entity.ApprovalKindOrder: {
		entity.OrderStatusOpen: {{to: entity.OrderStatusClosed}},
	},
}

// CanTransition valida que (from → to) exista para la clase de entidad y que
// el rol del actor esté permitido. ErrInvalidStateTransition si el paso no
// existe; ErrForbidden si el rol no puede ejecutarlo.
func CanTransition(kind, from, to, role string) error {
	steps, ok := transitions[kind][from]
	if !ok {
		return domain.ErrInvalidStateTransition
	}
	for _, s := range steps {
		if s.to != to {
			continue
		}
		if len(s.roles) == 0 {
			return nil
		}
		for _, r := range s.roles {
			if r == role {
				return nil
			}
		}
		return domain.ErrForbidden
	}
	return domain.ErrInvalidStateTransition
}

// IsReviewer indica si el rol puede decidir aprobaciones.
func IsReviewer(role string) bool {
	for _, r := range reviewerRoles {
		if r == role {
			return true
		}
	}
	return false
}

// HasImplicitApproval indica si el rol contabiliza sobre-entregas sin pasar
// por revisión.
func HasImplicitApproval(role string) bool { return IsReviewer(role) }

// Decide resuelve un registro de aprobación. El motivo es obligatorio al
// rechazar; esto se hace cumplir aquí, en la frontera del dominio, no
// opcionalmente por el caller. Un registro ya decidido no admite re-decisión.
func Decide(rec *entity.ApprovalRecord, reviewerID, role, decision, reason string, now time.Time) error {
	if !IsReviewer(role) {
		return domain.ErrForbidden
	}
	if rec.Decided() {
		return domain.ErrInvalidStateTransition
	}
	switch decision {
	case entity.DecisionApproved:
	case entity.DecisionRejected:
		if reason == "" {
			ve := &domain.ValidationError{}
			ve.Add("reason", "el motivo de rechazo es obligatorio")
			return ve
		}
	default:
		ve := &domain.ValidationError{}
		ve.Add("decision", "decisión desconocida: "+decision)
		return ve
	}
	rec.Decision = decision
	rec.Reason = reason
	rec.ReviewedBy = &reviewerID
	rec.DecidedAt = &now
	return nil
}

// DeliveryStatus deriva el estado visible de una entrega a partir de los
// hechos subyacentes (estado de cabecera + registros de aprobación por línea),
// en lugar de banderas booleanas dispersas. Es la única función de estado
// derivado que consumen API y tests.
func DeliveryStatus(tx *entity.Transaction, lineApprovals []*entity.ApprovalRecord) string {
	if tx.Status == entity.TxStatusRejected {
		return entity.TxStatusRejected
	}
	byLine := make(map[string]*entity.ApprovalRecord, len(lineApprovals))
	for _, a := range lineApprovals {
		byLine[a.EntityID] = a
	}
	for _, l := range tx.OverDeliveryLines() {
		rec := byLine[l.ID]
		if rec == nil || rec.Decision == entity.DecisionPending {
			return entity.TxStatusPendingApproval
		}
		if rec.Decision == entity.DecisionRejected {
			return entity.TxStatusRejected
		}
	}
	return tx.Status
}

// EnsureDeliveryPostable verifica que una entrega pueda contabilizarse:
// una entrega con cualquier línea de sobre-entrega en revisión queda bloqueada
// globalmente (contabilizar, editar y borrar) hasta que cada línea esté
// aprobada; el rechazo es terminal e irreversible. Una línea sobre-entregada
// sin registro de revisión solo pasa si el actor tiene aprobación implícita.
func EnsureDeliveryPostable(tx *entity.Transaction, lineApprovals []*entity.ApprovalRecord, actorRole string) error {
	if tx.Status == entity.TxStatusRejected || tx.Posted() {
		return domain.ErrInvalidStateTransition
	}
	byLine := make(map[string]*entity.ApprovalRecord, len(lineApprovals))
	for _, a := range lineApprovals {
		byLine[a.EntityID] = a
	}
	for _, l := range tx.OverDeliveryLines() {
		rec := byLine[l.ID]
		switch {
		case rec == nil:
			if !HasImplicitApproval(actorRole) {
				return domain.ErrApprovalRequired
			}
		case rec.Decision == entity.DecisionPending:
			return domain.ErrApprovalRequired
		case rec.Decision == entity.DecisionRejected:
			return domain.ErrInvalidStateTransition
		}
	}
	return nil
}
