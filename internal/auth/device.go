package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DeviceClaims is the token payload a device presents when connecting.
type DeviceClaims struct {
	DeviceID string `json:"device_id"`
	jwt.RegisteredClaims
}

// DeviceVerifier checks device connection tokens. An empty secret
// disables verification, which is the default for LAN deployments.
type DeviceVerifier struct {
	secret []byte
}

func NewDeviceVerifier(secret string) *DeviceVerifier {
	return &DeviceVerifier{secret: []byte(secret)}
}

func (v *DeviceVerifier) Enabled() bool { return len(v.secret) > 0 }

// Verify parses the token and returns the device id it was issued for.
func (v *DeviceVerifier) Verify(tokenStr string) (string, error) {
	claims := &DeviceClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse device token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid device token")
	}

	deviceID := claims.DeviceID
	if deviceID == "" {
		deviceID = claims.Subject
	}
	if deviceID == "" {
		return "", fmt.Errorf("device token missing device id")
	}
	return deviceID, nil
}

// IssueDeviceToken mints a token for a device id; used by provisioning
// tooling and tests.
func (v *DeviceVerifier) IssueDeviceToken(deviceID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, DeviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: deviceID,
		},
	})
	return token.SignedString(v.secret)
}
