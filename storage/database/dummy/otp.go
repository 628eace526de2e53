package dummydb

import (
	"github.com/edureach/backend/core/otp"
)

var otpPKCount int

type otpRepository struct {
	db *otpTable
}

var _ otp.Repository = (*otpRepository)(nil) // interface compliance check

func NewOTPRepository(db *DB) otp.Repository {
	return &otpRepository{db: db.otp}
}

func (repo *otpRepository) ReplaceChallenge(ch otp.Challenge) (otp.Challenge, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, existing := range repo.db.table {
		if existing.StudentID == ch.StudentID {
			delete(repo.db.table, id)
		}
	}

	otpPKCount++
	ch.ID = otpPKCount
	repo.db.table[ch.ID] = &ch
	return ch, nil
}

func (repo *otpRepository) GetChallenge(studentID int) (otp.Challenge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, ch := range repo.db.table {
		if ch.StudentID == studentID {
			return *ch, nil
		}
	}
	return otp.Challenge{}, otp.ErrNoChallenge
}

func (repo *otpRepository) DeleteChallengeByID(id int) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return false, nil
	}
	delete(repo.db.table, id)
	return true, nil
}
