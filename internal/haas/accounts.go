package haas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/iamcos/haaslab/internal/models"
)

// ListAccounts returns all trading accounts on the platform.
func (c *Client) ListAccounts(ctx context.Context) ([]RawAccount, error) {
	data, err := c.makeRequest(ctx, accountAPI, "GET_ACCOUNTS", nil)
	if err != nil {
		return nil, err
	}

	var accounts []RawAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

// ListBots returns all existing bots; their account bindings determine
// which accounts count as occupied.
func (c *Client) ListBots(ctx context.Context) ([]RawBot, error) {
	data, err := c.makeRequest(ctx, botAPI, "GET_BOTS", nil)
	if err != nil {
		return nil, err
	}

	var bots []RawBot
	if err := json.Unmarshal(data, &bots); err != nil {
		return nil, fmt.Errorf("failed to parse bots: %w", err)
	}
	return bots, nil
}

// CreateBotFromLab creates a live bot from a lab backtest's parameter
// set, bound to the given account.
func (c *Client) CreateBotFromLab(ctx context.Context, req CreateBotRequest) (RawBot, error) {
	params := url.Values{}
	params.Set("labid", req.LabID)
	params.Set("backtestid", req.BacktestID)
	params.Set("accountid", req.AccountID)
	params.Set("market", req.MarketTag)
	params.Set("botname", req.BotName)
	params.Set("leverage", strconv.FormatFloat(req.Leverage, 'f', -1, 64))

	data, err := c.makePostRequest(ctx, botAPI, "ADD_BOT_FROM_LABS", params)
	if err != nil {
		return RawBot{}, err
	}

	var bot RawBot
	if err := json.Unmarshal(data, &bot); err != nil {
		return RawBot{}, fmt.Errorf("failed to parse created bot: %w", err)
	}
	return bot, nil
}

// GetPrice returns the last close price for a market tag.
func (c *Client) GetPrice(ctx context.Context, marketTag string) (float64, error) {
	params := url.Values{}
	params.Set("market", marketTag)

	data, err := c.makeRequest(ctx, priceAPI, "PRICE", params)
	if err != nil {
		return 0, err
	}

	var price rawPrice
	if err := json.Unmarshal(data, &price); err != nil {
		return 0, fmt.Errorf("failed to parse price: %w", err)
	}
	return price.Close, nil
}

// AccountSlots converts the platform account and bot listings into
// allocator slots. An account is occupied when any existing bot is
// bound to it.
func AccountSlots(accounts []RawAccount, bots []RawBot) []models.AccountSlot {
	occupied := make(map[string]bool, len(bots))
	for _, b := range bots {
		if b.AccountID != "" {
			occupied[b.AccountID] = true
		}
	}

	slots := make([]models.AccountSlot, 0, len(accounts))
	for _, a := range accounts {
		slots = append(slots, models.AccountSlot{
			AccountID: a.AccountID,
			Exchange:  a.Exchange,
			Occupied:  occupied[a.AccountID],
		})
	}
	return slots
}
