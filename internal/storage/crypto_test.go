package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	key, err := DeriveKey("correct horse battery staple")
	assert.Nil(t, err)

	ciphertext, err := Encrypt([]byte("tok_live_abc123"), key)
	assert.Nil(t, err)
	assert.NotContains(t, ciphertext, "tok_live")

	plaintext, err := Decrypt(ciphertext, key)
	assert.Nil(t, err)
	assert.Equal(t, "tok_live_abc123", string(plaintext))
}

func TestDecryptWithWrongKey(t *testing.T) {
	key1, err := DeriveKey("passphrase one")
	assert.Nil(t, err)
	key2, err := DeriveKey("passphrase two")
	assert.Nil(t, err)

	ciphertext, err := Encrypt([]byte("secret"), key1)
	assert.Nil(t, err)

	_, err = Decrypt(ciphertext, key2)
	assert.NotNil(t, err)
}

func TestDecryptTamperedCiphertext(t *testing.T) {
	key, err := DeriveKey("passphrase")
	assert.Nil(t, err)

	ciphertext, err := Encrypt([]byte("secret"), key)
	assert.Nil(t, err)

	flipped := byte('A')
	if ciphertext[0] == flipped {
		flipped = 'B'
	}
	tampered := string(flipped) + ciphertext[1:]
	_, err = Decrypt(tampered, key)
	assert.NotNil(t, err)
}

func TestDecryptGarbage(t *testing.T) {
	key, err := DeriveKey("passphrase")
	assert.Nil(t, err)

	_, err = Decrypt("not base64!!!", key)
	assert.NotNil(t, err)

	_, err = Decrypt("c2hvcnQ=", key) // valid base64, too short for a nonce
	assert.NotNil(t, err)
}

func TestDeriveKey(t *testing.T) {
	a, err := DeriveKey("same passphrase")
	assert.Nil(t, err)
	b, err := DeriveKey("same passphrase")
	assert.Nil(t, err)
	c, err := DeriveKey("other passphrase")
	assert.Nil(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
