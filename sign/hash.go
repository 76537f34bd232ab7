package sign

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/NethermindEth/starknet.go/curve"

	"github.com/rickgao/paradex-data/paradex"
)

// Hash layout constants, fixed by the venue's protocol version.
var (
	// Short-string encoding of "StarkNet Message", the signed-message
	// prefix that domain-separates off-chain signatures.
	starknetMessagePrefix = mustShortString("StarkNet Message")

	domainName = mustShortString("Paradex")

	// The venue's StarkNetDomain puts chainId before version, unlike
	// SNIP-12. The type string and the element order below must both
	// keep that swapped layout or every signature changes.
	domainTypeHash = starknetKeccak([]byte("StarkNetDomain(name:felt,chainId:felt,version:felt)"))

	orderTypeHash = starknetKeccak([]byte(
		"Order(timestamp:felt,market:felt,side:felt,orderType:felt,size:felt,price:felt)"))

	modifyOrderTypeHash = starknetKeccak([]byte(
		"ModifyOrder(timestamp:felt,market:felt,side:felt,orderType:felt,size:felt,price:felt,id:felt)"))

	requestTypeHash = starknetKeccak([]byte(
		"Request(method:felt,path:felt,body:felt,timestamp:felt,expiration:felt)"))
)

// ChainID encodes a chain name (e.g. "PRIVATE_SN_PARACLEAR_MAINNET")
// as its field-element form.
func ChainID(name string) (*big.Int, error) {
	return shortStringToFelt(name)
}

var domainHashes sync.Map // chain id (decimal string) -> *big.Int

// DomainHash computes the domain-separator hash for a chain id.
// Results are cached: the hash is pure and a client signs against one
// or two chains for its whole lifetime.
func DomainHash(chainID *big.Int) *big.Int {
	key := chainID.String()
	if cached, ok := domainHashes.Load(key); ok {
		return cached.(*big.Int)
	}
	h := curve.ComputeHashOnElements([]*big.Int{
		domainTypeHash,
		domainName,
		chainID,
		big.NewInt(1), // version
	})
	domainHashes.Store(key, h)
	return h
}

// messageHash wraps a struct hash in the signed-message envelope:
// h(prefix, domain, account, structHash).
func messageHash(chainID, account, structHash *big.Int) *big.Int {
	return curve.ComputeHashOnElements([]*big.Int{
		starknetMessagePrefix,
		DomainHash(chainID),
		account,
		structHash,
	})
}

func sideFelt(side paradex.Side) (*big.Int, error) {
	switch side {
	case paradex.Buy:
		return big.NewInt(1), nil
	case paradex.Sell:
		return big.NewInt(2), nil
	default:
		return nil, fmt.Errorf("unknown side %q", side)
	}
}

// OrderHash computes the signable hash of a canonical order for the
// given account on the given chain. Pure: identical inputs always
// yield the identical hash.
func OrderHash(o CanonicalOrder, timestampMs uint64, chainID, account *big.Int) (*big.Int, error) {
	market, err := shortStringToFelt(o.Market)
	if err != nil {
		return nil, err
	}
	side, err := sideFelt(o.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := shortStringToFelt(string(o.Type))
	if err != nil {
		return nil, err
	}

	structHash := curve.ComputeHashOnElements([]*big.Int{
		orderTypeHash,
		new(big.Int).SetUint64(timestampMs),
		market,
		side,
		orderType,
		big.NewInt(o.SizeQuantums),
		big.NewInt(o.PriceQuantums),
	})
	return messageHash(chainID, account, structHash), nil
}

// ModifyOrderHash is OrderHash with the amended order's id appended.
func ModifyOrderHash(o CanonicalOrder, orderID string, timestampMs uint64, chainID, account *big.Int) (*big.Int, error) {
	market, err := shortStringToFelt(o.Market)
	if err != nil {
		return nil, err
	}
	side, err := sideFelt(o.Side)
	if err != nil {
		return nil, err
	}
	orderType, err := shortStringToFelt(string(o.Type))
	if err != nil {
		return nil, err
	}
	id, err := strToFelt(orderID)
	if err != nil {
		return nil, err
	}

	structHash := curve.ComputeHashOnElements([]*big.Int{
		modifyOrderTypeHash,
		new(big.Int).SetUint64(timestampMs),
		market,
		side,
		orderType,
		big.NewInt(o.SizeQuantums),
		big.NewInt(o.PriceQuantums),
		id,
	})
	return messageHash(chainID, account, structHash), nil
}

// AuthHash computes the signable hash of the REST auth request
// (POST /v1/auth) for a timestamp/expiration pair in epoch seconds.
func AuthHash(chainID *big.Int, timestampSec, expirationSec uint64, account *big.Int) *big.Int {
	method := mustShortString("POST")
	path := mustShortString("/v1/auth")
	body := big.NewInt(0) // empty body

	structHash := curve.ComputeHashOnElements([]*big.Int{
		requestTypeHash,
		method,
		path,
		body,
		new(big.Int).SetUint64(timestampSec),
		new(big.Int).SetUint64(expirationSec),
	})
	return messageHash(chainID, account, structHash)
}

// AccountAddress derives the venue account contract address from a
// Stark public key and the venue's account proxy/implementation class
// hashes.
func AccountAddress(publicKey, proxyClassHash, accountClassHash *big.Int) *big.Int {
	calldataHash := curve.ComputeHashOnElements([]*big.Int{
		accountClassHash,
		selectorFromName("initialize"),
		big.NewInt(2),
		publicKey,
		big.NewInt(0),
	})

	addr := curve.ComputeHashOnElements([]*big.Int{
		mustShortString("STARKNET_CONTRACT_ADDRESS"),
		big.NewInt(0), // deployer
		publicKey,     // salt
		proxyClassHash,
		calldataHash,
	})
	return addr.Mod(addr, contractAddressBound)
}
