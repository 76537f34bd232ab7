package sign

import (
	"math/big"
	"testing"

	"github.com/rickgao/paradex-data/paradex"
)

// Known-answer vector for the mainnet domain separator. If this
// breaks, every signature the client produces is wrong.
func TestDomainHashMainnet(t *testing.T) {
	chainID, err := ChainID("PRIVATE_SN_PARACLEAR_MAINNET")
	if err != nil {
		t.Fatalf("ChainID failed: %v", err)
	}

	want := "0x6f74f207280b65cf663fb8d7763fac1e7398cd6d7da5d7681dc300ee4278a0a"
	if got := feltToHex(DomainHash(chainID)); got != want {
		t.Errorf("DomainHash = %s, want %s", got, want)
	}
}

func TestDomainHashCached(t *testing.T) {
	chainID, _ := ChainID("PRIVATE_SN_POTC_SEPOLIA")
	h1 := DomainHash(chainID)
	h2 := DomainHash(new(big.Int).Set(chainID))
	if h1.Cmp(h2) != 0 {
		t.Errorf("cached hash differs: %s vs %s", feltToHex(h1), feltToHex(h2))
	}
}

func TestOrderHashPure(t *testing.T) {
	chainID, _ := ChainID("PRIVATE_SN_PARACLEAR_MAINNET")
	account := big.NewInt(0x1234)
	canon := CanonicalOrder{
		Market:        "BTC-USD-PERP",
		Side:          paradex.Buy,
		Type:          paradex.OrderLimit,
		SizeQuantums:  150_000_000,
		PriceQuantums: 9_812_350_000_000,
	}

	h1, err := OrderHash(canon, 1737473412000, chainID, account)
	if err != nil {
		t.Fatalf("OrderHash failed: %v", err)
	}
	h2, err := OrderHash(canon, 1737473412000, chainID, account)
	if err != nil {
		t.Fatalf("OrderHash failed: %v", err)
	}
	if h1.Cmp(h2) != 0 {
		t.Error("identical inputs produced different hashes")
	}

	h3, err := OrderHash(canon, 1737473412001, chainID, account)
	if err != nil {
		t.Fatalf("OrderHash failed: %v", err)
	}
	if h1.Cmp(h3) == 0 {
		t.Error("timestamp change did not change the hash")
	}
}

func TestOrderHashSideMatters(t *testing.T) {
	chainID, _ := ChainID("PRIVATE_SN_PARACLEAR_MAINNET")
	account := big.NewInt(1)
	buy := CanonicalOrder{Market: "ETH-USD-PERP", Side: paradex.Buy, Type: paradex.OrderMarket, SizeQuantums: 100_000_000}
	sell := buy
	sell.Side = paradex.Sell

	hb, err := OrderHash(buy, 1, chainID, account)
	if err != nil {
		t.Fatalf("OrderHash(buy) failed: %v", err)
	}
	hs, err := OrderHash(sell, 1, chainID, account)
	if err != nil {
		t.Fatalf("OrderHash(sell) failed: %v", err)
	}
	if hb.Cmp(hs) == 0 {
		t.Error("buy and sell hashed identically")
	}
}

func TestModifyOrderHashIncludesID(t *testing.T) {
	chainID, _ := ChainID("PRIVATE_SN_PARACLEAR_MAINNET")
	account := big.NewInt(7)
	canon := CanonicalOrder{Market: "BTC-USD-PERP", Side: paradex.Sell, Type: paradex.OrderLimit, SizeQuantums: 1, PriceQuantums: 2}

	h1, err := ModifyOrderHash(canon, "123456", 10, chainID, account)
	if err != nil {
		t.Fatalf("ModifyOrderHash failed: %v", err)
	}
	h2, err := ModifyOrderHash(canon, "123457", 10, chainID, account)
	if err != nil {
		t.Fatalf("ModifyOrderHash failed: %v", err)
	}
	if h1.Cmp(h2) == 0 {
		t.Error("order id change did not change the hash")
	}

	plain, err := OrderHash(canon, 10, chainID, account)
	if err != nil {
		t.Fatalf("OrderHash failed: %v", err)
	}
	if h1.Cmp(plain) == 0 {
		t.Error("modify hash collides with plain order hash")
	}
}

func TestShortStringEncoding(t *testing.T) {
	f, err := shortStringToFelt("ab")
	if err != nil {
		t.Fatalf("shortStringToFelt failed: %v", err)
	}
	// 'a' = 0x61, 'b' = 0x62, big endian.
	if f.Cmp(big.NewInt(0x6162)) != 0 {
		t.Errorf("felt(\"ab\") = %s, want 0x6162", feltToHex(f))
	}

	if _, err := shortStringToFelt("0123456789012345678901234567890X"); err == nil {
		t.Error("32-byte string must be rejected")
	}
	if _, err := shortStringToFelt("caf\xc3\xa9"); err == nil {
		t.Error("non-ASCII string must be rejected")
	}
}

func TestStrToFelt(t *testing.T) {
	numeric, err := strToFelt("123456")
	if err != nil {
		t.Fatalf("strToFelt failed: %v", err)
	}
	if numeric.Cmp(big.NewInt(123456)) != 0 {
		t.Errorf("numeric id = %s, want 123456", numeric)
	}

	alnum, err := strToFelt("abc123")
	if err != nil {
		t.Fatalf("strToFelt failed: %v", err)
	}
	short := mustShortString("abc123")
	if alnum.Cmp(short) != 0 {
		t.Errorf("alphanumeric id = %s, want short-string form %s", alnum, short)
	}
}

func TestAuthHashVariesWithTimestamps(t *testing.T) {
	chainID, _ := ChainID("PRIVATE_SN_POTC_SEPOLIA")
	account := big.NewInt(99)

	h1 := AuthHash(chainID, 1737473412, 1737473412+300, account)
	h2 := AuthHash(chainID, 1737473413, 1737473413+300, account)
	if h1.Cmp(h2) == 0 {
		t.Error("different auth timestamps hashed identically")
	}
}

func TestAccountAddressBelowBound(t *testing.T) {
	pub := big.NewInt(0xbeef)
	proxy := big.NewInt(0x1111)
	class := big.NewInt(0x2222)

	addr := AccountAddress(pub, proxy, class)
	if addr.Cmp(contractAddressBound) >= 0 {
		t.Errorf("address %s exceeds the contract address bound", feltToHex(addr))
	}

	if again := AccountAddress(pub, proxy, class); addr.Cmp(again) != 0 {
		t.Error("address derivation is not deterministic")
	}
}
