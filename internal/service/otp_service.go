package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/Alixefin/kryptic-sub000/internal/dto"
	"github.com/Alixefin/kryptic-sub000/internal/model"
	"github.com/Alixefin/kryptic-sub000/internal/repository"
)

// Vigencia del código desde el envío
const otpTTL = 10 * time.Minute

// ErrInvalidCode cubre código incorrecto, expirado y ya usado con un único
// mensaje: no le regalamos a nadie un oráculo de cuál fue la causa.
var ErrInvalidCode = errors.New("Invalid or expired code")

type OtpRepository interface {
	UpsertActive(ctx context.Context, c *model.OtpCode) error
	Consume(ctx context.Context, email, code string, now time.Time) (bool, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	MarkEmailVerified(ctx context.Context, email string, at time.Time) error
}

type OtpService struct {
	codes     OtpRepository
	users     UserRepository
	publisher TaskPublisher
}

func NewOtpService(codes OtpRepository, users UserRepository, p TaskPublisher) *OtpService {
	return &OtpService{codes: codes, users: users, publisher: p}
}

// SendCode genera un código de 6 dígitos, lo guarda como ÚNICO código activo
// del email (el upsert reemplaza cualquier código anterior) y encola el email.
// El encolado es fire-and-forget: el envío devuelve éxito igual.
func (s *OtpService) SendCode(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.codes.UpsertActive(ctx, &model.OtpCode{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(otpTTL),
		Used:      false,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	task := dto.OtpEmailTask{
		TaskID:     uuid.NewString(),
		Email:      email,
		Code:       code,
		EnqueuedAt: now,
	}
	if err := s.publisher.PublishOtpEmail(ctx, task); err != nil {
		log.Println("❌ Error encolando email de OTP:", err)
	}

	return nil
}

// VerifyCode consume el código de forma atómica. Si el usuario existe,
// le estampa la verificación de email; si no existe, no pasa nada (el OTP
// también sirve para direcciones sin cuenta).
func (s *OtpService) VerifyCode(ctx context.Context, email, code string) error {
	ok, err := s.codes.Consume(ctx, email, code, time.Now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	if err := s.users.MarkEmailVerified(ctx, email, time.Now().UTC()); err != nil {
		// el código ya se consumió; esto no invalida la verificación
		log.Println("Error estampando verificación de email:", err)
	}
	return nil
}

func (s *OtpService) IsEmailVerified(ctx context.Context, email string) (bool, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.EmailVerifiedAt != nil, nil
}

// Código uniforme en [100000, 999999], siempre 6 dígitos.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
