package chain

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/agrotm/weather-oracle/internal/weather"
)

// ErrUnknownFeed is returned when a feed name has no registered contract.
var ErrUnknownFeed = errors.New("no chainlink feed registered for name")

// Chainlink aggregator read surface: latest round plus fixed-point scale.
const aggregatorABI = `[
	{"name":"latestRoundData","type":"function","stateMutability":"view","inputs":[],"outputs":[
		{"name":"roundId","type":"uint80"},
		{"name":"answer","type":"int256"},
		{"name":"startedAt","type":"uint256"},
		{"name":"updatedAt","type":"uint256"},
		{"name":"answeredInRound","type":"uint80"}]},
	{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"name":"description","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]}
]`

// defaultFeeds maps feed names to aggregator contract addresses. Custom
// weather adapters would be registered here; these mirror the registry the
// platform ships with.
var defaultFeeds = map[string]common.Address{
	"PRECIPITATION": common.HexToAddress("0x1234567890abcdef1234567890abcdef12345678"),
	"TEMPERATURE":   common.HexToAddress("0xabcdef1234567890abcdef1234567890abcdef12"),
}

// FeedReading is a decoded latest-round observation from an on-chain feed.
type FeedReading struct {
	Feed        string    `json:"feed"`
	Value       float64   `json:"value"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Source      string    `json:"source"`
}

// caller is the subset of ethclient used by the reader; narrowed for tests.
type caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader reads latest-round data from Chainlink-style aggregator contracts.
// It is a best-effort enrichment source: it sits outside the weather
// fallback chain and every failure stays contained behind an error return.
type Reader struct {
	client caller
	feeds  map[string]common.Address
	abi    abi.ABI
}

// NewReader dials the JSON-RPC endpoint and prepares the aggregator ABI.
func NewReader(rpcURL string) (*Reader, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial eth rpc: %w", err)
	}
	return newReader(client)
}

func newReader(client caller) (*Reader, error) {
	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("parse aggregator abi: %w", err)
	}
	return &Reader{
		client: client,
		feeds:  defaultFeeds,
		abi:    parsed,
	}, nil
}

// ReadFeed resolves feedName against the registry and decodes the feed's
// latest round: value = answer / 10^decimals, timestamp from the round.
func (r *Reader) ReadFeed(ctx context.Context, feedName string) (*FeedReading, error) {
	addr, ok := r.feeds[strings.ToUpper(feedName)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeed, feedName)
	}

	var round struct {
		RoundId         *big.Int
		Answer          *big.Int
		StartedAt       *big.Int
		UpdatedAt       *big.Int
		AnsweredInRound *big.Int
	}
	if err := r.call(ctx, addr, "latestRoundData", &round.RoundId, &round.Answer, &round.StartedAt, &round.UpdatedAt, &round.AnsweredInRound); err != nil {
		return nil, fmt.Errorf("latestRoundData for %s: %w", feedName, err)
	}

	var decimals uint8
	if err := r.call(ctx, addr, "decimals", &decimals); err != nil {
		return nil, fmt.Errorf("decimals for %s: %w", feedName, err)
	}

	var description string
	if err := r.call(ctx, addr, "description", &description); err != nil {
		return nil, fmt.Errorf("description for %s: %w", feedName, err)
	}

	answer, _ := new(big.Float).SetInt(round.Answer).Float64()
	value := answer / math.Pow10(int(decimals))

	return &FeedReading{
		Feed:        strings.ToUpper(feedName),
		Value:       value,
		Description: description,
		UpdatedAt:   time.Unix(round.UpdatedAt.Int64(), 0).UTC(),
		Source:      weather.SourceChainlink,
	}, nil
}

func (r *Reader) call(ctx context.Context, addr common.Address, method string, out ...interface{}) error {
	data, err := r.abi.Pack(method)
	if err != nil {
		return err
	}

	raw, err := r.client.CallContract(ctx, ethereum.CallMsg{To: &addr, Data: data}, nil)
	if err != nil {
		return err
	}

	results, err := r.abi.Unpack(method, raw)
	if err != nil {
		return err
	}
	if len(results) != len(out) {
		return fmt.Errorf("%s: expected %d outputs, got %d", method, len(out), len(results))
	}

	for i, res := range results {
		if err := assign(out[i], res); err != nil {
			return fmt.Errorf("%s output %d: %w", method, i, err)
		}
	}
	return nil
}

func assign(dst, src interface{}) error {
	switch d := dst.(type) {
	case **big.Int:
		v, ok := src.(*big.Int)
		if !ok {
			return fmt.Errorf("expected *big.Int, got %T", src)
		}
		*d = v
	case *uint8:
		v, ok := src.(uint8)
		if !ok {
			return fmt.Errorf("expected uint8, got %T", src)
		}
		*d = v
	case *string:
		v, ok := src.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", src)
		}
		*d = v
	default:
		return fmt.Errorf("unsupported output type %T", dst)
	}
	return nil
}
