package impl

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashAndVerify(t *testing.T) {
	p := NewPasswordService(bcrypt.MinCost)

	hash, err := p.Hash("kiosk-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("not a bcrypt hash: %q", hash)
	}
	if !p.Verify(hash, "kiosk-secret") {
		t.Fatalf("correct password rejected")
	}
	if p.Verify(hash, "kiosk-Secret") {
		t.Fatalf("wrong password accepted")
	}
	if p.Verify("not-a-hash", "kiosk-secret") {
		t.Fatalf("garbage hash accepted")
	}
}

func TestPasswordCostClamped(t *testing.T) {
	// out-of-range costs fall back to the bcrypt default instead of failing
	p := NewPasswordService(99)
	hash, err := p.Hash("kiosk-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Fatalf("cost: got %d want %d", cost, bcrypt.DefaultCost)
	}
}
