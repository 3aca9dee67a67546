package auth_test

import (
	"context"
	"testing"

	"showcase-cms/internal/auth/adapter/security"
	"showcase-cms/internal/auth/testutil"

	"golang.org/x/crypto/bcrypt"
)

func BenchmarkPasswordCompare(b *testing.B) {
	password := []byte(testutil.StrongPassword)
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		b.Fatalf("bcrypt error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := bcrypt.CompareHashAndPassword(hash, password); err != nil {
			b.Fatalf("bcrypt compare error: %v", err)
		}
	}
}

func BenchmarkValidateToken(b *testing.B) {
	svc, err := security.NewJWTokenService(testutil.Config())
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	token, err := svc.GenerateToken(ctx, "op-1", "editor@example.com")
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.ValidateToken(ctx, token); err != nil {
			b.Fatal(err)
		}
	}
}
