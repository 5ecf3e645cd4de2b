package internal

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"math/big"
)

type RecordID [16]byte

func NewRecordID() (RecordID, error) {
	var rid RecordID
	_, err := rand.Read(rid[:])
	return rid, err
}

func (r RecordID) Bytes() []byte {
	return r[:]
}

func (r RecordID) String() string {
	// base64url, no padding, compact
	return base64.RawURLEncoding.EncodeToString(r[:])
}

func ParseRecordID(recordID string) (RecordID, error) {
	var rid RecordID

	raw, err := base64.RawURLEncoding.DecodeString(recordID)
	if err != nil {
		return rid, err
	}
	if len(raw) != len(rid) {
		return rid, errors.New("invalid record id size")
	}

	copy(rid[:], raw)
	return rid, nil
}

// NewOTP returns a fixed-width decimal passcode drawn uniformly from
// [10^(digits-1), 10^digits - 1].
func NewOTP(digits int) (string, error) {
	if digits < 4 || digits > 10 {
		return "", errors.New("invalid otp digits")
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	n.Add(n, low)

	otp := n.String()
	if len(otp) != digits {
		return "", errors.New("invalid otp generation length")
	}
	return otp, nil
}
