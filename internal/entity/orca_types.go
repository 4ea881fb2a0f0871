package entity

// OrcaWhirlpool is a single element of the Orca whirlpool list `whirlpools` array.
type OrcaWhirlpool struct {
	Address     string          `json:"address"`
	TokenA      *OrcaToken      `json:"tokenA"`
	TokenB      *OrcaToken      `json:"tokenB"`
	TickSpacing *int            `json:"tickSpacing"`
	LpFeeRate   *float64        `json:"lpFeeRate"`
	Price       *float64        `json:"price"`
	TVL         *float64        `json:"tvl"`
	Volume      *OrcaPeriodStat `json:"volume"`
	PriceChange *OrcaPeriodStat `json:"priceChange"`
}

// OrcaToken describes one side of a whirlpool.
type OrcaToken struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

// OrcaPeriodStat holds day/week/month values for a whirlpool statistic.
type OrcaPeriodStat struct {
	Day   *float64 `json:"day"`
	Week  *float64 `json:"week"`
	Month *float64 `json:"month"`
}
