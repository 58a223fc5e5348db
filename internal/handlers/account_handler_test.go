package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "finboard/internal/errors"
	"finboard/internal/models"
	"finboard/internal/pagination"
	"finboard/internal/services"
)

type mockAccountService struct {
	createAccountFn   func(userID string, in services.AccountInput) (*models.Account, error)
	getUserAccountsFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn  func(userID, accountID string) (*models.Account, error)
	updateAccountFn   func(userID, accountID string, patch services.AccountPatch) (*models.Account, error)
	deleteAccountFn   func(userID, accountID string) error
}

func (m *mockAccountService) CreateAccount(userID string, in services.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, in)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetUserAccounts(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Account{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(userID, accountID string, patch services.AccountPatch) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, patch)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) DeleteAccount(userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

var _ services.AccountServicer = (*mockAccountService)(nil)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/accounts", handler.CreateAccount)
	auth.GET("/accounts", handler.GetAccounts)
	auth.GET("/accounts/:id", handler.GetAccount)
	auth.PATCH("/accounts/:id", handler.UpdateAccount)
	auth.DELETE("/accounts/:id", handler.DeleteAccount)
	return r
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 with a zero balance by default", func(t *testing.T) {
		var got services.AccountInput
		svc := &mockAccountService{
			createAccountFn: func(userID string, in services.AccountInput) (*models.Account, error) {
				got = in
				return &models.Account{Base: models.Base{ID: testOtherID}, UserID: userID, Name: in.Name, Type: in.Type, Balance: in.Balance}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupAccountRouter(NewAccountHandler(svc, audit))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Everyday","type":"checking","bank":"Monzo"}`)

		assertStatus(t, rec, http.StatusCreated)
		if !got.Balance.IsZero() || got.Bank != "Monzo" {
			t.Errorf("unexpected input %+v", got)
		}
		account := parseJSON(t, rec)["account"].(map[string]interface{})
		if account["balance"] != "0" || account["type"] != "checking" {
			t.Errorf("unexpected account %v", account)
		}
		if got := audit.actions(); len(got) != 1 || got[0] != "CREATE_ACCOUNT" {
			t.Errorf("unexpected audit actions %v", got)
		}
	})

	t.Run("passes the opening balance", func(t *testing.T) {
		var got decimal.Decimal
		svc := &mockAccountService{
			createAccountFn: func(_ string, in services.AccountInput) (*models.Account, error) {
				got = in.Balance
				return &models.Account{}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Rainy day","type":"savings","balance":"1500.25"}`)

		assertStatus(t, rec, http.StatusCreated)
		if !got.Equal(decimal.RequireFromString("1500.25")) {
			t.Errorf("expected 1500.25, got %s", got)
		}
	})

	invalid := map[string]string{
		"missing name": `{"type":"cash"}`,
		"unknown type": `{"name":"Brokerage","type":"investment"}`,
		"bad color":    `{"name":"Wallet","type":"cash","color":"#12"}`,
	}
	for name, body := range invalid {
		t.Run("returns 400 on "+name, func(t *testing.T) {
			r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/accounts", body)

			assertStatus(t, rec, http.StatusBadRequest)
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestAccountHandler_GetAccounts(t *testing.T) {
	svc := &mockAccountService{
		getUserAccountsFn: func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
			if userID != testUserID || page.Page != 3 {
				t.Errorf("unexpected call %s %+v", userID, page)
			}
			resp := pagination.NewPageResponse([]models.Account{{Name: "Cash"}}, 3, 20, 41)
			return &resp, nil
		},
	}
	r := setupAccountRouter(NewAccountHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/accounts?page=3", "")

	assertStatus(t, rec, http.StatusOK)
	result := parseJSON(t, rec)
	if result["total_pages"] != float64(3) || len(result["data"].([]interface{})) != 1 {
		t.Errorf("unexpected page %v", result)
	}
}

func TestAccountHandler_GetAccount(t *testing.T) {
	svc := &mockAccountService{
		getAccountByIDFn: func(_, _ string) (*models.Account, error) { return nil, apperrors.ErrAccountNotFound },
	}
	r := setupAccountRouter(NewAccountHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/accounts/"+testOtherID, "")

	assertStatus(t, rec, http.StatusNotFound)
	assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
}

func TestAccountHandler_UpdateAccount(t *testing.T) {
	t.Run("passes only given fields", func(t *testing.T) {
		var got services.AccountPatch
		svc := &mockAccountService{
			updateAccountFn: func(_, _ string, patch services.AccountPatch) (*models.Account, error) {
				got = patch
				return &models.Account{}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/accounts/"+testOtherID, `{"balance":-120.5}`)

		assertStatus(t, rec, http.StatusOK)
		if got.Balance == nil || !got.Balance.Equal(decimal.RequireFromString("-120.5")) {
			t.Errorf("unexpected balance %v", got.Balance)
		}
		if got.Name != nil || got.Type != nil {
			t.Errorf("unexpected fields %+v", got)
		}
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockAuditService{}))

		rec := doRequest(r, "PATCH", "/accounts/abc", `{"name":"x"}`)

		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	audit := &mockAuditService{}
	r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, audit))

	rec := doRequest(r, "DELETE", "/accounts/"+testOtherID, "")

	assertStatus(t, rec, http.StatusOK)
	if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_ACCOUNT_RECORD" || audit.entries[0].resourceID != testOtherID {
		t.Errorf("unexpected audit entries %+v", audit.entries)
	}
}
