package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ValidateUserEmailSQL flips the verification flag in one statement so the
// transition is idempotent: re-running it against an already verified row is
// a plain no-op update.
var ValidateUserEmailSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."email" = ?
) RETURNING *;`

// Users is the persistence surface for identity records
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	MarkEmailValidated(ctx context.Context, email string) (*User, error)
	MarkEmailValidatedTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) MarkEmailValidated(ctx context.Context, email string) (*User, error) {
	return a.MarkEmailValidatedTx(ctx, a.db, email)
}

func (a *users) MarkEmailValidatedTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ValidateUserEmailSQL, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return res[0], nil
}

// userStoreAdapter narrows the repository surface to the UserStore contract
// the orchestrator consumes. Creation runs its check-then-insert inside a
// transaction so the lookup and the insert observe the same state.
type userStoreAdapter struct {
	repo RepositoryManager
}

// NewUserStore adapts the repository manager to the UserStore capability
func NewUserStore(repo RepositoryManager) UserStore {
	return userStoreAdapter{repo: repo}
}

func (a userStoreAdapter) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.repo.Users().GetByEmail(ctx, email)
}

func (a userStoreAdapter) GetByID(ctx context.Context, id string) (*User, error) {
	return a.repo.Users().GetByID(ctx, id)
}

func (a userStoreAdapter) Create(ctx context.Context, user *User) (*User, error) {
	var created *User

	err := a.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := a.repo.Users().GetByEmailTx(ctx, tx, user.Email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) {
			return err
		}

		record, err := a.repo.Users().CreateTx(ctx, tx, user)
		if err != nil {
			return err
		}

		created = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (a userStoreAdapter) MarkEmailValidated(ctx context.Context, email string) (*User, error) {
	return a.repo.Users().MarkEmailValidated(ctx, email)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeEmail(record.Email)

	if record.Role == "" {
		record.Role = RoleGuest
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
