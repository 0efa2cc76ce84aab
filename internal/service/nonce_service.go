package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

const nonceLength = 20

// NonceService issues anti-forgery tokens tied to a user and an action.
// A token is valid during the tick it was created in and the next one, where a
// tick is half the configured lifetime.
type NonceService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

func NewNonceService(secret string, lifetime time.Duration) *NonceService {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &NonceService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
}

// Create returns a token for userID and action.
func (s *NonceService) Create(userID, action string) string {
	return s.sign(s.tick(), userID, action)
}

// Verify reports whether nonce was created for userID and action and has not expired.
func (s *NonceService) Verify(userID, action, nonce string) bool {
	if userID == "" || len(nonce) != nonceLength {
		return false
	}
	tick := s.tick()
	for _, t := range []int64{tick, tick - 1} {
		if hmac.Equal([]byte(s.sign(t, userID, action)), []byte(nonce)) {
			return true
		}
	}
	return false
}

func (s *NonceService) tick() int64 {
	half := int64(s.lifetime / 2)
	return s.now().UnixNano()/half + 1
}

func (s *NonceService) sign(tick int64, userID, action string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strconv.FormatInt(tick, 10)))
	mac.Write([]byte{'|'})
	mac.Write([]byte(action))
	mac.Write([]byte{'|'})
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))[:nonceLength]
}
