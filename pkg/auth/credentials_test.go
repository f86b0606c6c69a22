package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zalando/go-keyring"
)

const testToken = "_|WARNING:-DO-NOT-SHARE-THIS.--Sharing-this-will-allow-someone-to-log-in-as-you|_ABCDEF123456"

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	account := &Account{
		Name:          "main",
		SecurityToken: testToken,
		UserAgent:     "TestAgent/1.0",
	}

	if err := manager.Store(account); err != nil {
		t.Fatalf("Failed to store account: %v", err)
	}
	if account.LastModified.IsZero() {
		t.Error("Store should stamp LastModified")
	}

	retrieved, err := manager.Retrieve("main")
	if err != nil {
		t.Fatalf("Failed to retrieve account: %v", err)
	}
	if retrieved.SecurityToken != testToken {
		t.Errorf("SecurityToken mismatch: got %s", retrieved.SecurityToken)
	}
	if retrieved.UserAgent != "TestAgent/1.0" {
		t.Errorf("UserAgent mismatch: got %s", retrieved.UserAgent)
	}

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("Failed to list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("Expected 1 account in list, got %d", len(accounts))
	}

	if err := manager.Delete("main"); err != nil {
		t.Errorf("Failed to delete account: %v", err)
	}
	if _, err := manager.Retrieve("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
	if mockStore.Count() != 0 {
		t.Errorf("Expected 0 accounts after deletion, got %d", mockStore.Count())
	}
	if err := manager.Delete("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound deleting twice, got %v", err)
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Account{SecurityToken: testToken}); err == nil {
		t.Error("Expected error for missing name")
	}
	if err := manager.Store(&Account{Name: "main", SecurityToken: "  \"\" "}); err == nil {
		t.Error("Expected error for blank token")
	}
}

func TestManagerStoreFallsBack(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	fallback := NewMockStore()
	manager := NewManagerWithStores(broken, fallback)

	if err := manager.Store(&Account{Name: "main", SecurityToken: testToken}); err != nil {
		t.Fatalf("Expected fallback store to accept account: %v", err)
	}
	if !fallback.Exists("main") {
		t.Error("Expected account in fallback store")
	}

	fallback.StoreError = errors.New("disk full")
	err := manager.Store(&Account{Name: "other", SecurityToken: testToken})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Expected last store error, got %v", err)
	}
}

func TestManagerListDeduplicates(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()
	_ = older.Store(&Account{Name: "b", SecurityToken: "old", LastModified: time.Unix(100, 0)})
	_ = newer.Store(&Account{Name: "b", SecurityToken: "new", LastModified: time.Unix(200, 0)})
	_ = newer.Store(&Account{Name: "a", SecurityToken: "x", LastModified: time.Unix(50, 0)})

	manager := NewManagerWithStores(older, newer)
	accounts, err := manager.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}
	if accounts[0].Name != "a" || accounts[1].Name != "b" {
		t.Errorf("Expected accounts sorted by name, got %s, %s", accounts[0].Name, accounts[1].Name)
	}
	if accounts[1].SecurityToken != "new" {
		t.Errorf("Expected the most recent copy, got %s", accounts[1].SecurityToken)
	}
}

func TestManagerResolve(t *testing.T) {
	t.Setenv(EnvSecurity, "")
	store := NewMockStore()
	_ = store.Store(&Account{Name: "old", SecurityToken: "t1", LastModified: time.Unix(100, 0)})
	_ = store.Store(&Account{Name: "recent", SecurityToken: "t2", LastModified: time.Unix(200, 0)})
	manager := NewManagerWithStores(store, NewEnvironmentStore())

	account, err := manager.Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if account.Name != "recent" {
		t.Errorf("Expected most recently saved account, got %s", account.Name)
	}

	account, err = manager.Resolve("old")
	if err != nil || account.SecurityToken != "t1" {
		t.Errorf("Expected named account, got %v, %v", account, err)
	}

	t.Setenv(EnvSecurity, "env-token")
	account, err = manager.Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if account.Name != "env" || account.SecurityToken != "env-token" {
		t.Errorf("Expected environment account to win, got %+v", account)
	}

	empty, _ := NewMockManager()
	if _, err := empty.Resolve(""); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", "abc"},
		{"  abc\n", "abc"},
		{".ROBLOSECURITY=abc;", "abc"},
		{`"abc"`, "abc"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeToken(tt.in); got != tt.want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{Name: "main", SecurityToken: testToken}
	sanitized := SanitizeAccount(account)

	if sanitized.SecurityToken == account.SecurityToken {
		t.Error("SecurityToken should be masked")
	}
	if sanitized.SecurityToken != "_|WA...3456" {
		t.Errorf("Unexpected mask: %s", sanitized.SecurityToken)
	}
	if sanitized.Name != "main" {
		t.Error("Name should not be masked")
	}
	if SanitizeAccount(&Account{SecurityToken: "short"}).SecurityToken != "********" {
		t.Error("Short tokens should be fully masked")
	}
	if SanitizeAccount(nil) != nil {
		t.Error("nil account should stay nil")
	}
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	t.Setenv(EnvPassphrase, "test_passphrase_123")

	store, err := NewEncryptedFileStore(path)
	if err != nil {
		t.Fatalf("Failed to create encrypted store: %v", err)
	}

	account := &Account{Name: "main", SecurityToken: testToken}
	if err := store.Store(account); err != nil {
		t.Fatalf("Failed to store in encrypted file: %v", err)
	}
	if err := store.Store(&Account{Name: "alt", SecurityToken: "alt_token_value"}); err != nil {
		t.Fatalf("Failed to store second account: %v", err)
	}

	retrieved, err := store.Retrieve("main")
	if err != nil {
		t.Fatalf("Failed to retrieve from encrypted file: %v", err)
	}
	if retrieved.SecurityToken != testToken {
		t.Errorf("SecurityToken mismatch after encryption/decryption")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(content, []byte("ABCDEF123456")) || bytes.Contains(content, []byte("alt_token_value")) {
		t.Error("File contains a plaintext token")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}

	accounts, err := store.List()
	if err != nil || len(accounts) != 2 {
		t.Errorf("Expected 2 accounts, got %d (%v)", len(accounts), err)
	}

	if err := store.Delete("main"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("alt"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be removed with its last account")
	}
	if _, err := store.Retrieve("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path, WithPassphrase("right"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Store(&Account{Name: "main", SecurityToken: testToken}); err != nil {
		t.Fatal(err)
	}

	other, err := NewEncryptedFileStore(path, WithPassphrase("wrong"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = other.Retrieve("main")
	if err == nil || !strings.Contains(err.Error(), "wrong passphrase") {
		t.Errorf("Expected decrypt failure, got %v", err)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(EnvSecurity, " .ROBLOSECURITY=env_token ")
	t.Setenv(EnvUserAgent, "EnvAgent/1.0")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Failed to retrieve from environment: %v", err)
	}
	if account.SecurityToken != "env_token" {
		t.Errorf("SecurityToken mismatch: got %s, want env_token", account.SecurityToken)
	}
	if account.UserAgent != "EnvAgent/1.0" {
		t.Errorf("UserAgent mismatch: got %s", account.UserAgent)
	}
	if _, err := store.Retrieve("someone-else"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected other names not to match, got %v", err)
	}
	if !store.Exists("env") {
		t.Error("Expected env account to exist")
	}

	if err := store.Store(&Account{}); err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}
	if err := store.Delete("env"); err != ErrStoreUnavailable {
		t.Error("Expected ErrStoreUnavailable for environment store")
	}

	t.Setenv(EnvSecurity, "")
	accounts, _ := store.List()
	if len(accounts) != 0 {
		t.Errorf("Expected no accounts without a token, got %d", len(accounts))
	}
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	if err != nil {
		t.Fatalf("Failed to create keyring store: %v", err)
	}

	if err := store.Store(&Account{Name: "main", SecurityToken: testToken}); err != nil {
		t.Fatal(err)
	}
	if err := store.Store(&Account{Name: "alt", SecurityToken: "alt"}); err != nil {
		t.Fatal(err)
	}
	// storing again must not duplicate the index entry
	if err := store.Store(&Account{Name: "main", SecurityToken: testToken}); err != nil {
		t.Fatal(err)
	}

	accounts, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 2 {
		t.Fatalf("Expected 2 accounts, got %d", len(accounts))
	}

	retrieved, err := store.Retrieve("main")
	if err != nil || retrieved.SecurityToken != testToken {
		t.Errorf("Unexpected retrieve result: %+v, %v", retrieved, err)
	}

	if err := store.Delete("main"); err != nil {
		t.Fatal(err)
	}
	if store.Exists("main") {
		t.Error("Expected main to be gone")
	}
	if err := store.Delete("main"); !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("Expected ErrCredentialsNotFound, got %v", err)
	}

	accounts, _ = store.List()
	if len(accounts) != 1 || accounts[0].Name != "alt" {
		t.Errorf("Expected only alt to remain, got %d accounts", len(accounts))
	}
}

func TestMockStore(t *testing.T) {
	store := NewMockStore()

	accounts, err := store.List()
	if err != nil {
		t.Errorf("Failed to list empty store: %v", err)
	}
	if len(accounts) != 0 {
		t.Errorf("Expected 0 accounts, got %d", len(accounts))
	}

	if err := store.Store(&Account{Name: "mock", SecurityToken: "mock_token"}); err != nil {
		t.Errorf("Failed to store account: %v", err)
	}
	if store.Count() != 1 {
		t.Errorf("Expected 1 account, got %d", store.Count())
	}
	if !store.Exists("mock") {
		t.Error("Account should exist")
	}

	store.ListError = errors.New("injected error")
	if _, err := store.List(); err == nil || err.Error() != "injected error" {
		t.Error("Expected injected error")
	}
}

func TestShowCookieGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowCookieGuide(&buf)
	if !strings.Contains(buf.String(), ".ROBLOSECURITY") {
		t.Error("Guide should name the cookie")
	}

	buf.Reset()
	ShowQuickGuide(&buf)
	if strings.Count(buf.String(), "\n") != 1 {
		t.Error("Quick guide should be a single line")
	}
}
