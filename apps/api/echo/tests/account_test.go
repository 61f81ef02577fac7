package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/somalabs/soma/apps/api/echo"
	"github.com/somalabs/soma/core/account"
	"github.com/somalabs/soma/services/email"
	"github.com/somalabs/soma/tests"
)

func Test_accountApi_register(t *testing.T) {
	app := setup(t)

	testutil.CreateAccount(t, accountRepo, "Awe", "awe@test.cd", "supersecret", true)

	path := "/v1/accounts/register"
	tests := []httpTest{
		{
			name: "empty payload", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name:     "invalid email",
			body:     []byte(`{"email": "notanemail", "password": "supersecret", "password_confirm": "supersecret"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name:     "password too short",
			body:     []byte(`{"email": "new@test.cd", "password": "short", "password_confirm": "short"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must be at least 8 characters in length"}),
		},
		{
			name:     "password mismatch",
			body:     []byte(`{"email": "new@test.cd", "password": "supersecret", "password_confirm": "different1"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name:     "duplicate email",
			body:     []byte(`{"email": "awe@test.cd", "password": "supersecret", "password_confirm": "supersecret"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "an account with this email already exists"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Registered with name", func(t *testing.T) {
		emailsvc.ClearSentMessages()
		body := []byte(`{"email": "KING@test.cd", "name": "King", "password": "supersecret", "password_confirm": "supersecret"}`)
		req, rec := newRequest(http.MethodPost, path, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var usr account.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if usr.ID == "" {
			t.Error("no ID assigned")
		}
		if usr.Email != "king@test.cd" { // lowercased
			t.Errorf("Email = %q", usr.Email)
		}
		if usr.Name != "King" {
			t.Errorf("Name = %q", usr.Name)
		}
		if !usr.Active() {
			t.Error("account not active")
		}
		if len(emailsvc.SentMessages) != 1 {
			t.Errorf("SentMessages = %d, want 1", len(emailsvc.SentMessages))
		}
	})

	t.Run("Registered without name", func(t *testing.T) {
		body := []byte(`{"email": "anon@test.cd", "password": "supersecret", "password_confirm": "supersecret"}`)
		req, rec := newRequest(http.MethodPost, path, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var usr account.User
		if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if usr.Name != "" {
			t.Errorf("Name = %q, want empty", usr.Name)
		}
	})
}

func Test_accountApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateAccount(t, accountRepo, "Awe", "awe@test.cd", "supersecret", true)
	testutil.CreateAccount(t, accountRepo, "N Dog", "ndog@test.cd", "supersecret", false)

	path := "/v1/accounts/login"
	tests := []httpTest{
		{
			name: "empty payload", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":    "this field is required",
				"password": "this field is required",
			}),
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "ghost@test.cd", "password": "supersecret"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "awe@test.cd", "password": "wrongpass1"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     []byte(`{"email": "ndog@test.cd", "password": "supersecret"}`),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Logged in", func(t *testing.T) {
		body := []byte(`{"email": "AWE@test.cd", "password": "supersecret"}`) // email case-insensitive
		req, rec := newRequest(http.MethodPost, path, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp echoapi.LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if resp.Token == "" {
			t.Fatal("no token returned")
		}

		// token grants access to the profile
		req, rec = newAuthRequest(http.MethodGet, "/v1/accounts/me", resp.Token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET /me code = %v; body %s", rec.Code, rec.Body.String())
		}

		// lastLogin was bumped
		usr, err := accountRepo.GetAccount(req.Context(), account.GetFilter{Email: "awe@test.cd"})
		if err != nil {
			t.Fatalf("GetAccount() failed: %v", err)
		}
		if usr.LastLogin.IsZero() {
			t.Error("LastLogin not set")
		}
	})
}

func Test_accountApi_refreshToken(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateAccount(t, accountRepo, "Awe", "awe@test.cd", "supersecret", true)
	naughty := testutil.CreateAccount(t, accountRepo, "N Dog", "ndog@test.cd", "supersecret", false)

	path := "/v1/accounts/token-refresh"
	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Inactive account not allowed", token: getToken(t, naughty),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{name: "Token refreshed", token: getToken(t, usr), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, path, tt.token)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}
			var resp echoapi.LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if resp.Token == "" {
				t.Error("no token returned")
			}
		})
	}
}

func Test_accountApi_profile(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateAccount(t, accountRepo, "Awe", "awe@test.cd", "supersecret", true)
	token := getToken(t, usr)

	t.Run("Auth required", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
		req, rec := newRequest(http.MethodGet, "/v1/accounts/me")
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Get own profile", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/accounts/me", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Update name", func(t *testing.T) {
		body := []byte(`{"name": "New Name"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/accounts/me", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got account.User
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if got.Name != "New Name" {
			t.Errorf("Name = %q", got.Name)
		}
	})

	t.Run("Update password requires confirmation", func(t *testing.T) {
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "this field is required"}),
		}
		body := []byte(`{"password": "newpassword"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/accounts/me", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Update password", func(t *testing.T) {
		body := []byte(`{"password": "newpassword", "password_confirm": "newpassword"}`)
		req, rec := newAuthRequest(http.MethodPut, "/v1/accounts/me", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
		}
		got, err := accountRepo.GetAccount(req.Context(), account.GetFilter{ID: usr.ID})
		if err != nil {
			t.Fatalf("GetAccount() failed: %v", err)
		}
		if err := got.CheckPassword("newpassword"); err != nil {
			t.Errorf("CheckPassword() failed: %v", err)
		}
	})
}
