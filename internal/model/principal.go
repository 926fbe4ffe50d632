package model

import "github.com/google/uuid"

type Role string

const (
	RoleConsumer Role = "CONSUMER"
	RoleOperator Role = "OPERATOR"
)

// Principal is the authenticated identity extracted from the access token.
type Principal struct {
	ConsumerID uuid.UUID
	Role       Role
}

func (p Principal) IsOperator() bool {
	return p.Role == RoleOperator
}
