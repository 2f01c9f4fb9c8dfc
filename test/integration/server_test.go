package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/platemenu/platemenu/internal/config"
	"github.com/platemenu/platemenu/internal/database"
	"github.com/platemenu/platemenu/internal/http/handler"
	"github.com/platemenu/platemenu/internal/http/router"
	"github.com/platemenu/platemenu/internal/repository"
	"github.com/platemenu/platemenu/internal/security"
	"github.com/platemenu/platemenu/internal/service"
)

type apiError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// captureMailer hands delivered passcodes to the test instead of sending
// mail. Delivery runs on a separate goroutine, so tests wait on the channel.
type captureMailer struct {
	delivered chan service.PasscodeMessage
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{delivered: make(chan service.PasscodeMessage, 16)}
}

func (m *captureMailer) SendPasscode(_ context.Context, msg service.PasscodeMessage) error {
	m.delivered <- msg
	return nil
}

func (m *captureMailer) waitForPasscode(t *testing.T) service.PasscodeMessage {
	t.Helper()
	select {
	case msg := <-m.delivered:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("passcode was never delivered")
		return service.PasscodeMessage{}
	}
}

type testServerOptions struct {
	cfgOverride func(cfg *config.Config)
	storageSvc  service.StorageService
}

func newTestServer(t *testing.T) (string, *http.Client, *captureMailer, func()) {
	return newTestServerWithOptions(t, testServerOptions{})
}

func newTestServerWithOptions(t *testing.T, opts testServerOptions) (string, *http.Client, *captureMailer, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Env:                "test",
		SessionTokenIssuer: "platemenu-test",
		SessionTokenSecret: "0123456789abcdef0123456789abcdef",
		SessionTokenTTL:    time.Hour,
		OTPCodeTTL:         10 * time.Minute,
		OTPCodeLength:      6,
		MailProvider:       "log",
		PublicMenuBaseURL:  "http://localhost:3000/menu",
		MenuCacheTTL:       5 * time.Minute,
	}
	if opts.cfgOverride != nil {
		opts.cfgOverride(cfg)
	}

	passcodeRepo := repository.NewPasscodeRepository(db)
	userRepo := repository.NewUserRepository(db)
	restaurantRepo := repository.NewRestaurantRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	dishRepo := repository.NewDishRepository(db)

	tokens := security.NewTokenManager(cfg.SessionTokenIssuer, cfg.SessionTokenSecret)
	tokenSvc := service.NewTokenService(cfg, tokens)
	mailer := newCaptureMailer()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	otpSvc := service.NewOTPService(cfg, passcodeRepo, userRepo, tokenSvc, mailer, log)
	userSvc := service.NewUserService(userRepo)
	menuCache := service.NewInMemoryMenuCacheStore()
	restaurantSvc := service.NewRestaurantService(cfg, restaurantRepo, menuCache)
	menuSvc := service.NewMenuService(cfg, restaurantRepo, categoryRepo, dishRepo, menuCache, opts.storageSvc)

	r := router.NewRouter(router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(otpSvc),
		UserHandler:       handler.NewUserHandler(userSvc),
		RestaurantHandler: handler.NewRestaurantHandler(restaurantSvc),
		MenuHandler:       handler.NewMenuHandler(menuSvc, opts.storageSvc),
		PublicHandler:     handler.NewPublicHandler(menuSvc),
		TokenManager:      tokens,
		CORSOrigins:       []string{"http://localhost"},
		EnableOTelHTTP:    false,
	})

	srv := httptest.NewServer(r)
	return srv.URL, srv.Client(), mailer, srv.Close
}

// loginWithOTP runs the full send/verify exchange and returns the session token.
func loginWithOTP(t *testing.T, client *http.Client, baseURL string, mailer *captureMailer, email string) string {
	t.Helper()
	resp, _ := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/send", map[string]string{"email": email}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send otp failed: status=%d", resp.StatusCode)
	}
	msg := mailer.waitForPasscode(t)

	var result service.VerifyResult
	resp, raw := doJSON(t, client, http.MethodPost, baseURL+"/api/v1/auth/otp/verify", map[string]string{
		"email": email,
		"otp":   msg.Code,
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify otp failed: status=%d body=%s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode verify result: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected session token after verification")
	}
	return result.Token
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any, token string) (*http.Response, []byte) {
	t.Helper()
	var payload []byte
	var err error
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, raw
}

func decodeAPIError(t *testing.T, raw []byte) apiError {
	t.Helper()
	var env apiError
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode error envelope: %v (%s)", err, raw)
	}
	return env
}
