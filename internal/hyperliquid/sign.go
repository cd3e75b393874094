// Package hyperliquid implements the hedge-venue REST connector: metadata,
// L2 book snapshots, and slippage-bounded IOC market orders signed with an
// EIP-712 agent-wallet action.
package hyperliquid

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer produces EIP-712 signatures over Hyperliquid agent-wallet actions.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
}

// NewSigner parses a hex-encoded agent-wallet private key resolved from the
// environment by internal/config, never read from a config file.
func NewSigner(privateKeyHex string, chainID int64) (*Signer, error) {
	keyHex := privateKeyHex
	if len(keyHex) >= 2 && keyHex[:2] == "0x" {
		keyHex = keyHex[2:]
	}
	privateKey, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
		chainID:    big.NewInt(chainID),
	}, nil
}

// Address returns the agent wallet's Ethereum address.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignAction signs a Hyperliquid "exchange" action (here, a market IOC
// order) as EIP-712 typed data and returns r, s, v in the wire format the
// exchange endpoint expects.
func (s *Signer) SignAction(nonce int64, actionHash []byte) (r, v1, v2 string, err error) {
	sig, err := s.signTypedData(
		&apitypes.TypedDataDomain{
			Name:              "Exchange",
			Version:           "1",
			ChainId:           (*ethmath.HexOrDecimal256)(new(big.Int).Set(s.chainID)),
			VerifyingContract: "0x0000000000000000000000000000000000000000",
		},
		apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": {
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		apitypes.TypedDataMessage{
			"source":       "a",
			"connectionId": actionHash,
		},
		"Agent",
	)
	if err != nil {
		return "", "", "", err
	}

	return "0x" + common.Bytes2Hex(sig[:32]), "0x" + common.Bytes2Hex(sig[32:64]), fmt.Sprintf("%d", sig[64]), nil
}

func (s *Signer) signTypedData(
	domain *apitypes.TypedDataDomain,
	typesDef apitypes.Types,
	message apitypes.TypedDataMessage,
	primaryType string,
) ([]byte, error) {
	typedData := apitypes.TypedData{
		Types:       typesDef,
		PrimaryType: primaryType,
		Domain:      *domain,
		Message:     message,
	}

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("typed data hash: %w", err)
	}

	sig, err := crypto.Sign(hash, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign typed data: %w", err)
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return sig, nil
}
