package signer

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	clierr "github.com/basefolio/aeromgr/internal/errors"
)

const (
	EnvPrivateKey           = "AEROMGR_PRIVATE_KEY"
	EnvPrivateKeyFile       = "AEROMGR_PRIVATE_KEY_FILE"
	EnvKeystorePath         = "AEROMGR_KEYSTORE_PATH"
	EnvKeystorePassword     = "AEROMGR_KEYSTORE_PASSWORD"
	EnvKeystorePasswordFile = "AEROMGR_KEYSTORE_PASSWORD_FILE"

	KeySourceAuto     = "auto"
	KeySourceEnv      = "env"
	KeySourceFile     = "file"
	KeySourceKeystore = "keystore"
)

// LocalSigner signs with an in-process ECDSA key loaded from the environment,
// a key file, or an encrypted keystore.
type LocalSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) SignTx(chainID *big.Int, tx *types.Transaction) (*types.Transaction, error) {
	if s == nil || s.privateKey == nil {
		return nil, clierr.New(clierr.CodeSigner, "local signer is not initialized")
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.privateKey)
}

// Config carries explicit key material inputs; empty fields fall back per the
// selected source.
type Config struct {
	PrivateKeyHex        string
	PrivateKeyFile       string
	KeystorePath         string
	KeystorePassword     string
	KeystorePasswordFile string
}

// NewLocalSignerFromEnv builds a signer from the process environment using
// the configured source selector (auto, env, file, keystore).
func NewLocalSignerFromEnv(source string) (*LocalSigner, error) {
	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = KeySourceAuto
	}
	cfg := Config{
		PrivateKeyHex:        strings.TrimSpace(os.Getenv(EnvPrivateKey)),
		PrivateKeyFile:       strings.TrimSpace(os.Getenv(EnvPrivateKeyFile)),
		KeystorePath:         strings.TrimSpace(os.Getenv(EnvKeystorePath)),
		KeystorePassword:     strings.TrimSpace(os.Getenv(EnvKeystorePassword)),
		KeystorePasswordFile: strings.TrimSpace(os.Getenv(EnvKeystorePasswordFile)),
	}
	switch source {
	case KeySourceAuto:
		// Precedence handled by loadPrivateKey.
	case KeySourceEnv:
		cfg.PrivateKeyFile, cfg.KeystorePath = "", ""
	case KeySourceFile:
		cfg.PrivateKeyHex, cfg.KeystorePath = "", ""
	case KeySourceKeystore:
		cfg.PrivateKeyHex, cfg.PrivateKeyFile = "", ""
	default:
		return nil, clierr.New(clierr.CodeConfig,
			fmt.Sprintf("unsupported key source %q (expected %s|%s|%s|%s)",
				source, KeySourceAuto, KeySourceEnv, KeySourceFile, KeySourceKeystore))
	}
	return NewLocalSigner(cfg)
}

func NewLocalSigner(cfg Config) (*LocalSigner, error) {
	pk, err := loadPrivateKey(cfg)
	if err != nil {
		return nil, err
	}
	pub, ok := pk.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, clierr.New(clierr.CodeSigner, "invalid ECDSA public key")
	}
	return &LocalSigner{privateKey: pk, address: crypto.PubkeyToAddress(*pub)}, nil
}

func loadPrivateKey(cfg Config) (*ecdsa.PrivateKey, error) {
	if cfg.PrivateKeyHex != "" {
		return parseHexKey(cfg.PrivateKeyHex)
	}
	if cfg.PrivateKeyFile != "" {
		buf, err := os.ReadFile(cfg.PrivateKeyFile)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeConfig, "read private key file", err)
		}
		return parseHexKey(string(buf))
	}
	if cfg.KeystorePath != "" {
		password := cfg.KeystorePassword
		if password == "" && cfg.KeystorePasswordFile != "" {
			buf, err := os.ReadFile(cfg.KeystorePasswordFile)
			if err != nil {
				return nil, clierr.Wrap(clierr.CodeConfig, "read keystore password file", err)
			}
			password = strings.TrimSpace(string(buf))
		}
		if password == "" {
			return nil, clierr.New(clierr.CodeConfig, "keystore password is required")
		}
		buf, err := os.ReadFile(cfg.KeystorePath)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeConfig, "read keystore file", err)
		}
		key, err := keystore.DecryptKey(buf, password)
		if err != nil {
			return nil, clierr.Wrap(clierr.CodeSigner, "decrypt keystore", err)
		}
		return key.PrivateKey, nil
	}
	return nil, clierr.New(clierr.CodeConfig,
		fmt.Sprintf("missing signing key: set %s, %s or %s", EnvPrivateKey, EnvPrivateKeyFile, EnvKeystorePath))
}

func parseHexKey(raw string) (*ecdsa.PrivateKey, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(raw), "0x")
	if clean == "" {
		return nil, clierr.New(clierr.CodeConfig, "empty private key")
	}
	pk, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeSigner, "parse private key", err)
	}
	return pk, nil
}
