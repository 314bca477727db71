package service

import (
	"errors"

	"github.com/odvhub/odvhub-backend/internal/app/model"
	"github.com/odvhub/odvhub-backend/internal/app/repository"
	"gorm.io/gorm"
)

var (
	ErrMemberNotFound = errors.New("member not found")
)

// MemberService exposes the member register to the staff surface. Members
// are created by identity provisioning only; this service is read-only.
type MemberService interface {
	GetByID(id uint) (*model.Member, error)
	GetByApplicationID(applicationID uint) (*model.Member, error)
	List() ([]model.Member, error)
}

type memberService struct {
	memberRepo repository.MemberRepository
}

func NewMemberService(memberRepo repository.MemberRepository) MemberService {
	return &memberService{memberRepo: memberRepo}
}

func (s *memberService) GetByID(id uint) (*model.Member, error) {
	member, err := s.memberRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	return member, err
}

func (s *memberService) GetByApplicationID(applicationID uint) (*model.Member, error) {
	member, err := s.memberRepo.FindByApplicationID(applicationID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	return member, err
}

func (s *memberService) List() ([]model.Member, error) {
	return s.memberRepo.List()
}
