package haas

import "encoding/json"

// envelope is the standard platform response wrapper.
type envelope struct {
	Success bool            `json:"Success"`
	Error   string          `json:"Error"`
	Data    json.RawMessage `json:"Data"`
}

// RawLab is a lab summary as delivered by the platform.
type RawLab struct {
	LabID              string `json:"LID"`
	Name               string `json:"N"`
	ScriptName         string `json:"SN"`
	MarketTag          string `json:"ME"`
	CompletedBacktests int    `json:"CB"`
	Status             int    `json:"S"`
}

// RawParameter is one script parameter in server order.
type RawParameter struct {
	Key   string `json:"K"`
	Value string `json:"V"`
}

// RawPerformance is the performance report block ("PR").
type RawPerformance struct {
	ROI             *float64 `json:"ROI"`
	RealizedProfit  *float64 `json:"RP"`
	StartingBalance *float64 `json:"SB"`
	MaxDrawdown     *float64 `json:"MD"`
}

// RawTrades is the trade report block ("T").
type RawTrades struct {
	TotalTrades   *int `json:"TC"`
	WinningTrades *int `json:"WC"`
}

// RawFees is the fee report block ("F").
type RawFees struct {
	TotalFees *float64 `json:"TFC"`
}

// RawReport is the nested backtest report. Any block may be absent.
type RawReport struct {
	Performance *RawPerformance `json:"PR"`
	Trades      *RawTrades      `json:"T"`
	Fees        *RawFees        `json:"F"`
}

// RawBacktestResult is one backtest as delivered by the result page
// endpoint. The flat ROI/Trades/WinRate fields are present only on
// records the platform has already summarized; the nested report is
// the fallback source.
type RawBacktestResult struct {
	LabID      string         `json:"LID"`
	BacktestID string         `json:"BUID"`
	Generation int            `json:"NG"`
	Population *int           `json:"NP"`
	ScriptName string         `json:"SN"`
	MarketTag  string         `json:"ME"`
	ROI        *float64       `json:"ROI,omitempty"`
	Trades     *int           `json:"TR,omitempty"`
	WinRate    *float64       `json:"WR,omitempty"`
	Report     *RawReport     `json:"RT,omitempty"`
	Parameters []RawParameter `json:"P,omitempty"`
}

// backtestPage is the paged result-set response.
type backtestPage struct {
	Items      []RawBacktestResult `json:"I"`
	NextPageID int                 `json:"NP"`
}

// RawAccount is one trading account as delivered by the platform.
type RawAccount struct {
	AccountID string `json:"AID"`
	Name      string `json:"N"`
	Exchange  string `json:"EC"`
	Simulated bool   `json:"IS"`
}

// RawBot is one existing bot binding as delivered by the platform.
type RawBot struct {
	BotID     string `json:"ID"`
	Name      string `json:"N"`
	AccountID string `json:"AID"`
	MarketTag string `json:"PM"`
	Activated bool   `json:"A"`
}

// rawPrice is the price tick response.
type rawPrice struct {
	Close float64 `json:"C"`
}

// CreateBotRequest carries everything the create-bot channel needs.
type CreateBotRequest struct {
	LabID      string
	BacktestID string
	AccountID  string
	MarketTag  string
	BotName    string
	Leverage   float64
}
