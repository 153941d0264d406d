package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/booking-api/internal/repository"
)

type ownershipRepository struct {
	db *sqlx.DB
}

type accountRepository struct {
	db *sqlx.DB
}

type verificationRepository struct {
	db *sqlx.DB
}

func NewOwnershipRepository(db *sqlx.DB) repository.OwnershipRepository {
	return &ownershipRepository{db: db}
}

func NewAccountRepository(db *sqlx.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func NewVerificationRepository(db *sqlx.DB) repository.VerificationRepository {
	return &verificationRepository{db: db}
}
