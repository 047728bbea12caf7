package settings_test

import (
	"testing"

	"github.com/ariefcatur/go-juice-pos/internal/postgres/pgtest"
	"github.com/ariefcatur/go-juice-pos/internal/promptpay"
	"github.com/ariefcatur/go-juice-pos/internal/settings"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		want      string
		wantError error
	}{
		{name: "mobile number", key: settings.KeyPromptPayNumber, value: " 081-234-5678 ", want: "081-234-5678"},
		{name: "clearing promptpay", key: settings.KeyPromptPayNumber, value: "", want: ""},
		{name: "bad promptpay", key: settings.KeyPromptPayNumber, value: "12345", wantError: promptpay.ErrInvalidIdentifier},
		{name: "shop name", key: settings.KeyShopName, value: "  Juice Corner ", want: "Juice Corner"},
		{name: "unknown key", key: "theme", value: "dark", wantError: settings.ErrUnknownKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := settings.Validate(tt.key, tt.value)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type settingsRepoSuite struct {
	suite.Suite

	pool      *pgxpool.Pool
	repo      *settings.Repo
	container testcontainers.Container
}

func TestSettingsRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	suite.Run(t, new(settingsRepoSuite))
}

func (s *settingsRepoSuite) SetupSuite() {
	var err error
	s.container, s.pool, err = pgtest.Start(s.T().Context())
	s.Require().NoError(err)
	s.repo = &settings.Repo{DB: s.pool}
}

func (s *settingsRepoSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(s.T().Context()))
	}
}

func (s *settingsRepoSuite) TestGetSetAll() {
	ctx := s.T().Context()

	v, err := s.repo.Get(ctx, settings.KeyShopName)
	s.Require().NoError(err)
	s.Empty(v)

	s.Require().NoError(s.repo.Set(ctx, settings.KeyShopName, "Juice Corner"))
	s.Require().NoError(s.repo.Set(ctx, settings.KeyShopName, "Juice Corner 2"))
	s.Require().NoError(s.repo.Set(ctx, settings.KeyPromptPayNumber, "0812345678"))

	v, err = s.repo.Get(ctx, settings.KeyShopName)
	s.Require().NoError(err)
	s.Equal("Juice Corner 2", v)

	all, err := s.repo.All(ctx)
	s.Require().NoError(err)
	s.Equal(map[string]string{
		settings.KeyPromptPayNumber: "0812345678",
		settings.KeyShopName:        "Juice Corner 2",
		settings.KeyShopPhone:       "",
	}, all)

	s.ErrorIs(s.repo.Set(ctx, "theme", "dark"), settings.ErrUnknownKey)
}
