package registry

import (
	"encoding/json"
	"testing"
)

func TestDescriptorForDefaultChain(t *testing.T) {
	desc, ok := DescriptorFor(AploChainID)
	if !ok {
		t.Fatal("expected descriptor for default chain")
	}
	id, err := desc.ChainID()
	if err != nil {
		t.Fatalf("ChainID failed: %v", err)
	}
	if id.Int64() != AploChainID {
		t.Fatalf("descriptor chain id %s, want %d", id, AploChainID)
	}
}

func TestChainDescriptorJSONShape(t *testing.T) {
	desc, _ := DescriptorFor(AploChainID)
	buf, err := json.Marshal(desc)
	if err != nil {
		t.Fatalf("marshal descriptor: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(buf, &m); err != nil {
		t.Fatalf("unmarshal descriptor: %v", err)
	}
	// The key names must match what add-chain wallet requests expect.
	for _, key := range []string{"chainId", "chainName", "nativeCurrency", "rpcUrls", "blockExplorerUrls"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("descriptor JSON missing key %q: %s", key, buf)
		}
	}
	if m["chainId"] != "0x6e7a" {
		t.Fatalf("unexpected chainId encoding: %v", m["chainId"])
	}
	currency, ok := m["nativeCurrency"].(map[string]any)
	if !ok {
		t.Fatalf("nativeCurrency is not an object: %v", m["nativeCurrency"])
	}
	for _, key := range []string{"name", "symbol", "decimals"} {
		if _, ok := currency[key]; !ok {
			t.Fatalf("nativeCurrency missing key %q", key)
		}
	}
}

func TestChainDescriptorRejectsBadHex(t *testing.T) {
	desc := ChainDescriptor{ChainIDHex: "0xzz"}
	if _, err := desc.ChainID(); err == nil {
		t.Fatal("expected invalid hex chain id to fail")
	}
}

func TestResolveRPCURL(t *testing.T) {
	url, err := ResolveRPCURL("", AploChainID)
	if err != nil {
		t.Fatalf("ResolveRPCURL failed: %v", err)
	}
	if url != "https://pub1.aplocoin.com" {
		t.Fatalf("unexpected default rpc url: %s", url)
	}

	url, err = ResolveRPCURL("  http://localhost:8545 ", AploChainID)
	if err != nil {
		t.Fatalf("ResolveRPCURL override failed: %v", err)
	}
	if url != "http://localhost:8545" {
		t.Fatalf("override not trimmed: %q", url)
	}

	if _, err := ResolveRPCURL("", 424242); err == nil {
		t.Fatal("expected error for chain without a default rpc")
	}
}
