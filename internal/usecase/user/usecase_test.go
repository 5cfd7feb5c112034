package user

import (
	"context"
	"testing"

	domain "miniloan-backend/internal/domain/user"
	"miniloan-backend/internal/testutil/usermock"
	"miniloan-backend/pkg/id"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRegister_Success(t *testing.T) {
	var created *domain.User
	uc := NewUsecase(&usermock.Repo{
		GetByEmailFn: func(_ context.Context, email string) (*domain.User, error) {
			assert.Equal(t, "ana@example.com", email)
			return nil, gorm.ErrRecordNotFound
		},
		CreateFn: func(_ context.Context, u *domain.User) error {
			created = u
			return nil
		},
	})

	dto, err := uc.Register(context.Background(), RegisterInput{
		Name:          " Ana ",
		Email:         "Ana@Example.COM",
		MonthlyIncome: decimal.NewFromInt(30000),
		Role:          "ROLE_ADMIN",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.True(t, id.IsID32(dto.UserID))
	assert.Equal(t, "Ana", dto.Name)
	assert.Equal(t, "ana@example.com", dto.Email)
	assert.Equal(t, string(domain.RoleAdmin), dto.Role)
	assert.True(t, dto.MonthlyIncome.Equal(decimal.NewFromInt(30000)))
}

func TestRegister_DefaultsToUserRole(t *testing.T) {
	uc := NewUsecase(&usermock.Repo{
		GetByEmailFn: func(context.Context, string) (*domain.User, error) { return nil, gorm.ErrRecordNotFound },
	})
	dto, err := uc.Register(context.Background(), RegisterInput{Name: "Bo", Email: "bo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleUser), dto.Role)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      RegisterInput
		repo    *usermock.Repo
		wantErr error
	}{
		{
			name:    "duplicate email",
			in:      RegisterInput{Name: "A", Email: "a@example.com"},
			repo:    &usermock.Repo{GetByEmailFn: func(context.Context, string) (*domain.User, error) { return &domain.User{}, nil }},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name: "unique index race",
			in:   RegisterInput{Name: "A", Email: "a@example.com"},
			repo: &usermock.Repo{
				GetByEmailFn: func(context.Context, string) (*domain.User, error) { return nil, gorm.ErrRecordNotFound },
				CreateFn:     func(context.Context, *domain.User) error { return gorm.ErrDuplicatedKey },
			},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name:    "negative income",
			in:      RegisterInput{Name: "A", Email: "a@example.com", MonthlyIncome: decimal.NewFromInt(-1)},
			repo:    &usermock.Repo{},
			wantErr: domain.ErrInvalid,
		},
		{
			name:    "unknown role",
			in:      RegisterInput{Name: "A", Email: "a@example.com", Role: "root"},
			repo:    &usermock.Repo{},
			wantErr: domain.ErrInvalid,
		},
		{
			name:    "blank name",
			in:      RegisterInput{Name: "  ", Email: "a@example.com"},
			repo:    &usermock.Repo{},
			wantErr: domain.ErrInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUsecase(tt.repo).Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLookups(t *testing.T) {
	const uid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	uc := NewUsecase(&usermock.Repo{
		GetByUserIDFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != uid {
				return nil, gorm.ErrRecordNotFound
			}
			return &domain.User{UserID: uid, MonthlyIncome: decimal.NewFromInt(45000), Role: domain.RoleAdmin}, nil
		},
	})
	ctx := context.Background()

	inc, err := uc.IncomeOf(ctx, uid)
	require.NoError(t, err)
	assert.True(t, inc.Equal(decimal.NewFromInt(45000)))

	role, err := uc.RoleOf(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = uc.IncomeOf(ctx, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = uc.Get(ctx, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList(t *testing.T) {
	uc := NewUsecase(&usermock.Repo{
		ListFn: func(context.Context) ([]domain.User, error) {
			return []domain.User{{UserID: "u1", Role: domain.RoleUser}, {UserID: "u2", Role: domain.RoleAdmin}}, nil
		},
	})
	got, err := uc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u2", got[1].UserID)
	assert.Equal(t, "ADMIN", got[1].Role)
}

func TestUpdateProfile(t *testing.T) {
	const uid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	var saved *domain.User
	uc := NewUsecase(&usermock.Repo{
		GetByUserIDFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != uid {
				return nil, gorm.ErrRecordNotFound
			}
			return &domain.User{UserID: uid, Occupation: "clerk", MonthlyIncome: decimal.NewFromInt(15000), Role: domain.RoleUser}, nil
		},
		SaveFn: func(_ context.Context, u *domain.User) error {
			saved = u
			return nil
		},
	})
	ctx := context.Background()

	dto, err := uc.UpdateProfile(ctx, uid, "  engineer ", decimal.RequireFromString("60000.456"))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "engineer", saved.Occupation)
	assert.True(t, saved.MonthlyIncome.Equal(decimal.RequireFromString("60000.46")))
	assert.Equal(t, "engineer", dto.Occupation)
	assert.Equal(t, string(domain.RoleUser), dto.Role)
	assert.True(t, dto.MonthlyIncome.Equal(decimal.RequireFromString("60000.46")))
}

func TestUpdateProfile_Errors(t *testing.T) {
	const uid = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	tests := []struct {
		name       string
		userID     string
		occupation string
		income     decimal.Decimal
		saveErr    error
		wantErr    error
	}{
		{"blank occupation", uid, "   ", decimal.NewFromInt(1000), nil, domain.ErrInvalid},
		{"negative income", uid, "engineer", decimal.NewFromInt(-1), nil, domain.ErrInvalid},
		{"unknown user", "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", "engineer", decimal.NewFromInt(1000), nil, domain.ErrNotFound},
		{"save fails", uid, "engineer", decimal.NewFromInt(1000), context.DeadlineExceeded, context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewUsecase(&usermock.Repo{
				GetByUserIDFn: func(_ context.Context, userID string) (*domain.User, error) {
					if userID != uid {
						return nil, gorm.ErrRecordNotFound
					}
					return &domain.User{UserID: uid}, nil
				},
				SaveFn: func(context.Context, *domain.User) error { return tt.saveErr },
			})
			_, err := uc.UpdateProfile(context.Background(), tt.userID, tt.occupation, tt.income)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
