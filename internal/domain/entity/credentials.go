package entity

import "fmt"

// CredentialInput is the payload submitted by the credential form.
type CredentialInput struct {
	AccessKey string `json:"access_key"`
	SecretKey string `json:"secret_key"`
	Region    string `json:"region"`
}

// String never exposes the secret key.
func (c CredentialInput) String() string {
	return fmt.Sprintf("CredentialInput{access_key=%s, region=%s}", MaskKey(c.AccessKey), c.Region)
}

// CredentialStatus is the answer of GET /credentials/check.
type CredentialStatus struct {
	Valid     bool   `json:"valid"`
	User      string `json:"user,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	ARN       string `json:"arn,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Credentials represents a validated AWS identity held for the session.
// The keys live only in memory and are dropped on logout.
type Credentials struct {
	AccessKey string `json:"-"`
	SecretKey string `json:"-"`
	Region    string `json:"region"`
	Valid     bool   `json:"valid"`
	User      string `json:"user,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	ARN       string `json:"arn,omitempty"`
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{user=%s, account=%s, access_key=%s, region=%s}",
		c.User, c.AccountID, MaskKey(c.AccessKey), c.Region)
}

// MaskKey keeps the last four characters of a key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
