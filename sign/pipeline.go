package sign

import (
	"fmt"
	"math/big"
	"time"

	"github.com/rickgao/paradex-data/paradex"
)

// CanonicalOrder is the validated, fixed-point form of an order: the
// exact values that enter the message hash. Price is zero quantums for
// types that carry no limit price.
type CanonicalOrder struct {
	Market        string
	Side          paradex.Side
	Type          paradex.OrderType
	SizeQuantums  int64
	PriceQuantums int64
}

// Pipeline validates, canonicalizes, hashes, and signs orders for one
// account on one chain.
type Pipeline struct {
	signer     *Signer
	chainID    *big.Int
	account    *big.Int
	accountHex string
	catalog    *paradex.Catalog
	now        func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCatalog makes the pipeline reject orders for markets absent from
// the catalog.
func WithCatalog(c *paradex.Catalog) PipelineOption {
	return func(p *Pipeline) { p.catalog = c }
}

// WithClock overrides the signature-timestamp clock.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline builds a signing pipeline for the named chain (e.g.
// "PRIVATE_SN_PARACLEAR_MAINNET") and a 0x-prefixed account address.
func NewPipeline(signer *Signer, chainName, accountHex string, opts ...PipelineOption) (*Pipeline, error) {
	if signer == nil {
		return nil, fmt.Errorf("%w: nil signer", ErrSigningFailure)
	}
	chainID, err := ChainID(chainName)
	if err != nil {
		return nil, fmt.Errorf("chain %q: %w", chainName, err)
	}
	account, err := feltFromHex(accountHex)
	if err != nil {
		return nil, fmt.Errorf("account address: %w", err)
	}
	p := &Pipeline{
		signer:     signer,
		chainID:    chainID,
		account:    account,
		accountHex: feltToHex(account),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SignedOrder is the pipeline output: the wire-ready order, the hash
// that was signed, and the signature components.
type SignedOrder struct {
	Order       paradex.Order
	Hash        *big.Int
	Signature   Signature
	TimestampMs uint64
}

// Canonicalize validates an order request and reduces it to the
// fixed-point values that enter the hash. All failures wrap
// ErrInvalidOrder.
func (p *Pipeline) Canonicalize(req paradex.OrderRequest) (CanonicalOrder, error) {
	if req.Market == "" {
		return CanonicalOrder{}, fmt.Errorf("%w: empty market", ErrInvalidOrder)
	}
	if _, err := shortStringToFelt(req.Market); err != nil {
		return CanonicalOrder{}, fmt.Errorf("%w: market: %v", ErrInvalidOrder, err)
	}
	if p.catalog != nil && !p.catalog.Has(req.Market) {
		return CanonicalOrder{}, fmt.Errorf("%w: unknown market %q", ErrInvalidOrder, req.Market)
	}
	if req.Side != paradex.Buy && req.Side != paradex.Sell {
		return CanonicalOrder{}, fmt.Errorf("%w: side %q", ErrInvalidOrder, req.Side)
	}
	if !req.Type.Valid() {
		return CanonicalOrder{}, fmt.Errorf("%w: order type %q", ErrInvalidOrder, req.Type)
	}
	if req.Instruction != "" && !req.Instruction.Valid() {
		return CanonicalOrder{}, fmt.Errorf("%w: instruction %q", ErrInvalidOrder, req.Instruction)
	}
	if !req.Size.IsPositive() {
		return CanonicalOrder{}, fmt.Errorf("%w: size %s must be positive", ErrInvalidOrder, req.Size)
	}
	sizeQ, err := ToQuantums(req.Size)
	if err != nil {
		return CanonicalOrder{}, fmt.Errorf("size: %w", err)
	}

	var priceQ int64
	switch {
	case req.Type.RequiresPrice():
		if req.Price == nil {
			return CanonicalOrder{}, fmt.Errorf("%w: %s order requires a price", ErrInvalidOrder, req.Type)
		}
		if !req.Price.IsPositive() {
			return CanonicalOrder{}, fmt.Errorf("%w: price %s must be positive", ErrInvalidOrder, req.Price)
		}
		priceQ, err = ToQuantums(*req.Price)
		if err != nil {
			return CanonicalOrder{}, fmt.Errorf("price: %w", err)
		}
	case req.Price != nil:
		return CanonicalOrder{}, fmt.Errorf("%w: %s order does not take a price", ErrInvalidOrder, req.Type)
	}

	return CanonicalOrder{
		Market:        req.Market,
		Side:          req.Side,
		Type:          req.Type,
		SizeQuantums:  sizeQ,
		PriceQuantums: priceQ,
	}, nil
}

// SignOrder canonicalizes, hashes, and signs a request with the
// current time as the signature timestamp.
func (p *Pipeline) SignOrder(req paradex.OrderRequest) (SignedOrder, error) {
	return p.SignOrderAt(req, uint64(p.now().UnixMilli()))
}

// SignOrderAt signs a request with an explicit signature timestamp in
// epoch milliseconds.
func (p *Pipeline) SignOrderAt(req paradex.OrderRequest, timestampMs uint64) (SignedOrder, error) {
	canon, err := p.Canonicalize(req)
	if err != nil {
		return SignedOrder{}, err
	}
	hash, err := OrderHash(canon, timestampMs, p.chainID, p.account)
	if err != nil {
		return SignedOrder{}, fmt.Errorf("%w: %v", ErrSigningFailure, err)
	}
	sig, err := p.signer.Sign(hash)
	if err != nil {
		return SignedOrder{}, err
	}
	return SignedOrder{
		Order:       req.WireOrder(sig.String(), timestampMs),
		Hash:        hash,
		Signature:   sig,
		TimestampMs: timestampMs,
	}, nil
}

// SignModifyOrder signs an amendment to an existing order.
func (p *Pipeline) SignModifyOrder(mod paradex.ModifyOrderRequest) (SignedOrder, error) {
	if mod.ID == "" {
		return SignedOrder{}, fmt.Errorf("%w: empty order id", ErrInvalidOrder)
	}
	canon, err := p.Canonicalize(mod.Request)
	if err != nil {
		return SignedOrder{}, err
	}
	timestampMs := uint64(p.now().UnixMilli())
	hash, err := ModifyOrderHash(canon, mod.ID, timestampMs, p.chainID, p.account)
	if err != nil {
		return SignedOrder{}, fmt.Errorf("%w: %v", ErrSigningFailure, err)
	}
	sig, err := p.signer.Sign(hash)
	if err != nil {
		return SignedOrder{}, err
	}
	return SignedOrder{
		Order:       mod.Request.WireOrder(sig.String(), timestampMs),
		Hash:        hash,
		Signature:   sig,
		TimestampMs: timestampMs,
	}, nil
}

// SignAuthRequest signs the REST auth request for a timestamp and
// expiration in epoch seconds, returning the signature wire form.
func (p *Pipeline) SignAuthRequest(timestampSec, expirationSec uint64) (Signature, error) {
	return p.signer.Sign(AuthHash(p.chainID, timestampSec, expirationSec, p.account))
}

// Account returns the account address the pipeline signs for.
func (p *Pipeline) Account() *big.Int { return new(big.Int).Set(p.account) }

// AccountHex returns the account address as 0x-prefixed hex.
func (p *Pipeline) AccountHex() string { return p.accountHex }
