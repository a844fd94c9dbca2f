package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	connStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"
	if err := SetConnectionString(connStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	got, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if got != connStr {
		t.Errorf("GetConnectionString() = %q, want %q", got, connStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString(""); err == nil {
		t.Error("SetConnectionString(\"\") should return an error")
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/testdb"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() after delete error = %v, want ErrNotFound", err)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want ErrNotFound", err)
	}
}

func TestWebhookSecrets(t *testing.T) {
	gokeyring.MockInit()

	name := WebhookSecret(" Daily-Checkin ")
	if name != "webhook:daily-checkin" {
		t.Errorf("WebhookSecret() = %q", name)
	}

	url := "https://discord.com/api/webhooks/1/abc"
	if err := Set(name, url); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := Get(WebhookSecret("daily-checkin"))
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != url {
		t.Errorf("Get() = %q, want %q", got, url)
	}

	if _, err := Get(WebhookSecret("todo")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() of unset secret error = %v, want ErrNotFound", err)
	}
}

func TestSetRejectsEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set("", "value"); err == nil {
		t.Error("Set() with empty name should fail")
	}
	if err := Set("name", ""); err == nil {
		t.Error("Set() with empty value should fail")
	}
}

func TestIsAvailableWithMock(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false with the mock keyring")
	}
}

func TestUnavailableKeyring(t *testing.T) {
	gokeyring.MockInitWithError(errors.New("dbus unavailable"))
	defer gokeyring.MockInit()

	if _, err := Get("anything"); !errors.Is(err, ErrKeyringUnavailable) {
		t.Errorf("Get() error = %v, want ErrKeyringUnavailable", err)
	}
	if IsAvailable() {
		t.Error("IsAvailable() = true with a failing keyring")
	}
}
