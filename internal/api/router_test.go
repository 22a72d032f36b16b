// internal/api/router_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"fintrack/internal/api/handler"
	"fintrack/internal/auth"
	"fintrack/internal/domain"
	"fintrack/internal/service"
	"fintrack/internal/util"
)

const testToken = "valid-token"

var testPrincipal = &auth.Principal{ID: 7, Email: "ana@example.com"}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, input service.SignUpInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	if token == testToken {
		return testPrincipal, nil
	}
	return nil, util.ErrUnauthorized
}

func (m *MockAuthService) Me(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) FindAll(ctx context.Context, userID int64) ([]domain.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Wallet), args.Error(1)
}

func (m *MockWalletService) FindOne(ctx context.Context, userID, id int64) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) Create(ctx context.Context, userID int64, input service.CreateWalletInput) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) Update(ctx context.Context, userID, id int64, input service.UpdateWalletInput) (*domain.Wallet, error) {
	args := m.Called(ctx, userID, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Wallet), args.Error(1)
}

func (m *MockWalletService) Remove(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockTransactionService implements only what the handler tests call.
type MockTransactionService struct {
	mock.Mock
	service.TransactionService
}

func (m *MockTransactionService) Create(ctx context.Context, userID int64, input service.CreateTransactionInput) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionService) FindAll(ctx context.Context, userID int64, opts service.ListTransactionsOptions) (*domain.Page[domain.Transaction], error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[domain.Transaction]), args.Error(1)
}

func (m *MockTransactionService) Remove(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockCategoryService implements only what the handler tests call.
type MockCategoryService struct {
	mock.Mock
	service.CategoryService
}

func (m *MockCategoryService) ListTransactionTypes(ctx context.Context) ([]domain.TransactionTypeRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransactionTypeRecord), args.Error(1)
}

func (m *MockCategoryService) Remove(ctx context.Context, userID, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) MonthlyReport(ctx context.Context, userID int64, year, month int) (*domain.MonthlyReport, error) {
	args := m.Called(ctx, userID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MonthlyReport), args.Error(1)
}

type testServer struct {
	handler      http.Handler
	auth         *MockAuthService
	wallets      *MockWalletService
	transactions *MockTransactionService
	categories   *MockCategoryService
	reports      *MockReportService
}

func newTestServer() *testServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := &testServer{
		auth:         new(MockAuthService),
		wallets:      new(MockWalletService),
		transactions: new(MockTransactionService),
		categories:   new(MockCategoryService),
		reports:      new(MockReportService),
	}
	s.handler = NewRouter(Handlers{
		Auth:        handler.NewAuthHandler(s.auth, logger),
		Wallet:      handler.NewWalletHandler(s.wallets, logger),
		Transaction: handler.NewTransactionHandler(s.transactions, logger),
		Category:    handler.NewCategoryHandler(s.categories, logger),
		Report:      handler.NewReportHandler(s.reports, logger),
	}, []string{"http://localhost:3000"})
	return s
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, method, path, body string, authorized bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	rec, _ := s.do(t, http.MethodGet, "/health", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer()

	for name, header := range map[string]string{
		"Missing":   "",
		"NotBearer": "Basic abc",
		"Invalid":   "Bearer nope",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/wallets", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
	s.wallets.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
}

func TestSignIn(t *testing.T) {
	s := newTestServer()
	user := &domain.User{ID: 7, Email: "ana@example.com", Name: "Ana", PasswordHash: "secret-hash"}
	s.auth.On("SignIn", mock.Anything, "ana@example.com", "correct horse").Return(user, "jwt", nil).Once()
	s.auth.On("SignIn", mock.Anything, "ana@example.com", "wrong").Return(nil, "", util.ErrUnauthorized).Once()

	rec, env := s.do(t, http.MethodPost, "/auth/sign-in", `{"email":"ana@example.com","password":"correct horse"}`, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"accessToken":"jwt"`)
	assert.NotContains(t, string(env.Data), "secret-hash")

	rec, env = s.do(t, http.MethodPost, "/auth/sign-in", `{"email":"ana@example.com","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = s.do(t, http.MethodPost, "/auth/sign-in", `{"email":"not-an-email","password":"x"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletEndpoints(t *testing.T) {
	s := newTestServer()
	wallet := &domain.Wallet{ID: 3, UserID: 7, Name: "Bank", Balance: decimal.RequireFromString("250.50")}

	t.Run("Update", func(t *testing.T) {
		s.wallets.On("Update", mock.Anything, int64(7), int64(3), mock.MatchedBy(func(in service.UpdateWalletInput) bool {
			return in.Name == nil && in.Balance != nil && in.Balance.Equal(decimal.RequireFromString("250.50"))
		})).Return(wallet, nil).Once()

		rec, env := s.do(t, http.MethodPatch, "/wallets/3", `{"balance":"250.50"}`, true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Wallet updated", env.Message)
		assert.Contains(t, string(env.Data), `"balance":"250.5"`)
	})

	t.Run("NegativeBalance", func(t *testing.T) {
		s.wallets.On("Update", mock.Anything, int64(7), int64(3), mock.Anything).
			Return(nil, errors.Join(errors.New("update wallet 3"), util.ErrNegativeBalance)).Once()

		rec, env := s.do(t, http.MethodPatch, "/wallets/3", `{"balance":"-5"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, util.ErrNegativeBalance.Error(), env.Message)
	})

	t.Run("NotFound", func(t *testing.T) {
		s.wallets.On("FindOne", mock.Anything, int64(7), int64(99)).Return(nil, util.ErrWalletNotFound).Once()

		rec, env := s.do(t, http.MethodGet, "/wallets/99", "", true)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, util.ErrWalletNotFound.Error(), env.Message)
	})

	t.Run("BadID", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/wallets/abc", "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("CreateDefaultsBalance", func(t *testing.T) {
		s.wallets.On("Create", mock.Anything, int64(7), mock.MatchedBy(func(in service.CreateWalletInput) bool {
			return in.Name == "Savings" && in.Balance.IsZero()
		})).Return(&domain.Wallet{ID: 4, Name: "Savings"}, nil).Once()

		rec, _ := s.do(t, http.MethodPost, "/wallets", `{"name":"Savings"}`, true)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("CreateRequiresName", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/wallets", `{"balance":"10"}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, env.Message, "name")
	})

	t.Run("Delete", func(t *testing.T) {
		s.wallets.On("Remove", mock.Anything, int64(7), int64(3)).Return(nil).Once()

		rec, _ := s.do(t, http.MethodDelete, "/wallets/3", "", true)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	s.wallets.AssertExpectations(t)
}

func TestTransactionEndpoints(t *testing.T) {
	s := newTestServer()

	t.Run("CreateTransfer", func(t *testing.T) {
		s.transactions.On("Create", mock.Anything, int64(7), mock.MatchedBy(func(in service.CreateTransactionInput) bool {
			return in.Type == domain.TransactionTypeTransfer &&
				in.Amount.Equal(decimal.NewFromInt(1000)) &&
				in.AdminFee.Equal(decimal.NewFromInt(50)) &&
				in.TargetWalletID != nil && *in.TargetWalletID == 2
		})).Return(&domain.Transaction{ID: 11, Type: domain.TransactionTypeTransfer}, nil).Once()

		rec, env := s.do(t, http.MethodPost, "/transactions",
			`{"amount":"1000","adminFee":"50","transactionTypeId":3,"transactionCategoryId":40,"walletId":1,"targetWalletId":2}`, true)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, string(env.Data), `"transactionType":{"id":3,"name":"Transfer"}`)
	})

	t.Run("SameWallet", func(t *testing.T) {
		s.transactions.On("Create", mock.Anything, int64(7), mock.Anything).
			Return(nil, util.ErrSameWalletTransfer).Once()

		rec, env := s.do(t, http.MethodPost, "/transactions",
			`{"amount":"1","transactionTypeId":3,"transactionCategoryId":40,"walletId":1,"targetWalletId":1}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, util.ErrSameWalletTransfer.Error(), env.Message)
	})

	t.Run("UnknownType", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodPost, "/transactions",
			`{"amount":"1","transactionTypeId":9,"transactionCategoryId":40,"walletId":1}`, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("ListByDate", func(t *testing.T) {
		day := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
		s.transactions.On("FindAll", mock.Anything, int64(7), mock.MatchedBy(func(opts service.ListTransactionsOptions) bool {
			return opts.Page == 2 && opts.Limit == 5 && opts.Date != nil && opts.Date.Equal(day)
		})).Return(&domain.Page[domain.Transaction]{Data: []domain.Transaction{}, Pagination: domain.NewPagination(6, 2, 5)}, nil).Once()

		rec, env := s.do(t, http.MethodGet, "/transactions?page=2&limit=5&date=2025-02-10", "", true)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), `"totalPages":2`)
	})

	t.Run("BadDate", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/transactions?date=10-02-2025", "", true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InternalErrorIsHidden", func(t *testing.T) {
		s.transactions.On("Remove", mock.Anything, int64(7), int64(5)).Return(errors.New("connection reset")).Once()

		rec, env := s.do(t, http.MethodDelete, "/transactions/5", "", true)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", env.Message)
	})

	s.transactions.AssertExpectations(t)
}

func TestCategoryEndpoints(t *testing.T) {
	s := newTestServer()
	types := []domain.TransactionTypeRecord{{ID: 1, Name: "Income"}, {ID: 2, Name: "Expense"}, {ID: 3, Name: "Transfer"}}
	s.categories.On("ListTransactionTypes", mock.Anything).Return(types, nil).Once()
	s.categories.On("Remove", mock.Anything, int64(7), int64(2)).Return(util.ErrInvalidInput).Once()

	rec, env := s.do(t, http.MethodGet, "/transaction-types", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Income"},{"id":2,"name":"Expense"},{"id":3,"name":"Transfer"}]`, string(env.Data))

	rec, _ = s.do(t, http.MethodDelete, "/transaction-categories/2", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.categories.AssertExpectations(t)
}

func TestReportExport(t *testing.T) {
	s := newTestServer()
	report := &domain.MonthlyReport{
		Period: domain.ReportPeriod{Year: 2025, Month: 2},
		Summary: domain.ReportSummary{
			Income:  decimal.NewFromInt(3000),
			Expense: decimal.NewFromInt(750),
			Balance: decimal.NewFromInt(2250),
		},
	}
	s.reports.On("MonthlyReport", mock.Anything, int64(7), 2025, 2).Return(report, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/reports/monthly/export?year=2025&month=2", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "report_2025_02.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")

	rec2, _ := s.do(t, http.MethodGet, "/reports/monthly?month=abc", "", true)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}
