package service

import (
	"context"
	"testing"
	"time"

	"github.com/Alixefin/kryptic-sub000/internal/model"
	"github.com/Alixefin/kryptic-sub000/internal/repository"
)

func newOtpService() (*OtpService, *repository.MemoryStore, *fakePublisher) {
	store := repository.NewMemoryStore()
	pub := &fakePublisher{}
	return NewOtpService(store, store, pub), store, pub
}

// el código enviado viaja en la tarea encolada; de ahí lo sacan los tests
func lastCode(t *testing.T, pub *fakePublisher) string {
	t.Helper()
	if len(pub.otpTasks) == 0 {
		t.Fatal("no se encoló ninguna tarea de OTP")
	}
	return pub.otpTasks[len(pub.otpTasks)-1].Code
}

func TestSendCode_SixDigits(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newOtpService()

	for i := 0; i < 20; i++ {
		if err := svc.SendCode(ctx, "a@x.com"); err != nil {
			t.Fatalf("send: %v", err)
		}
		code := lastCode(t, pub)
		if len(code) != 6 {
			t.Fatalf("código de %d dígitos: %q", len(code), code)
		}
		if code[0] == '0' {
			t.Fatalf("código fuera de rango: %q", code)
		}
	}
}

func TestVerifyCode_ConsumesExactlyOnce(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newOtpService()

	if err := svc.SendCode(ctx, "a@x.com"); err != nil {
		t.Fatal(err)
	}
	code := lastCode(t, pub)

	if err := svc.VerifyCode(ctx, "a@x.com", code); err != nil {
		t.Fatalf("primera verificación: %v", err)
	}
	// replay con el mismo código: ya está consumido
	if err := svc.VerifyCode(ctx, "a@x.com", code); err != ErrInvalidCode {
		t.Fatalf("replay: esperaba ErrInvalidCode, obtuve %v", err)
	}
}

func TestVerifyCode_Expired(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newOtpService()

	if err := svc.SendCode(ctx, "a@x.com"); err != nil {
		t.Fatal(err)
	}
	code := lastCode(t, pub)

	store.SetOtpExpiry("a@x.com", time.Now().Add(-time.Minute))

	err := svc.VerifyCode(ctx, "a@x.com", code)
	if err != ErrInvalidCode {
		t.Fatalf("expirado: esperaba ErrInvalidCode, obtuve %v", err)
	}
	// mismo mensaje genérico para todas las causas
	if err.Error() != "Invalid or expired code" {
		t.Fatalf("mensaje: %q", err.Error())
	}
}

func TestVerifyCode_OtherEmailNeverMatches(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newOtpService()

	if err := svc.SendCode(ctx, "a@x.com"); err != nil {
		t.Fatal(err)
	}
	code := lastCode(t, pub)

	// b@x.com no tiene código; el de a@x.com no le sirve ni por coincidencia
	if err := svc.VerifyCode(ctx, "b@x.com", code); err != ErrInvalidCode {
		t.Fatalf("email ajeno: esperaba ErrInvalidCode, obtuve %v", err)
	}
	// y el código de a sigue vivo para a
	if err := svc.VerifyCode(ctx, "a@x.com", code); err != nil {
		t.Fatalf("el código del dueño dejó de servir: %v", err)
	}
}

// Escenario completo del supersede: C1, luego C2 antes de usar C1.
func TestSendCode_SupersedesPrevious(t *testing.T) {
	ctx := context.Background()
	svc, store, pub := newOtpService()

	store.AddUser(model.User{ID: "u1", Email: "a@x.com", Name: "Ada"})

	if err := svc.SendCode(ctx, "a@x.com"); err != nil {
		t.Fatal(err)
	}
	c1 := pub.otpTasks[0].Code

	if err := svc.SendCode(ctx, "a@x.com"); err != nil {
		t.Fatal(err)
	}
	c2 := pub.otpTasks[1].Code

	if c1 != c2 {
		// C1 quedó invalidado por el reenvío
		if err := svc.VerifyCode(ctx, "a@x.com", c1); err != ErrInvalidCode {
			t.Fatalf("C1 debería estar superseded: %v", err)
		}
	}
	if err := svc.VerifyCode(ctx, "a@x.com", c2); err != nil {
		t.Fatalf("C2 debería verificar: %v", err)
	}

	verified, err := svc.IsEmailVerified(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if !verified {
		t.Fatal("el usuario existente no quedó verificado")
	}
}

func TestVerifyCode_WithoutUserRecord(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newOtpService()

	// dirección sin cuenta: verificar funciona igual
	if err := svc.SendCode(ctx, "guest@x.com"); err != nil {
		t.Fatal(err)
	}
	if err := svc.VerifyCode(ctx, "guest@x.com", lastCode(t, pub)); err != nil {
		t.Fatalf("verificación de invitado: %v", err)
	}

	verified, err := svc.IsEmailVerified(ctx, "guest@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if verified {
		t.Fatal("sin fila de usuario no hay timestamp que consultar")
	}
}

func TestIsEmailVerified_UnverifiedUser(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newOtpService()

	store.AddUser(model.User{ID: "u1", Email: "a@x.com", Name: "Ada"})

	verified, err := svc.IsEmailVerified(ctx, "a@x.com")
	if err != nil {
		t.Fatal(err)
	}
	if verified {
		t.Fatal("usuario sin verificar figura como verificado")
	}
}
