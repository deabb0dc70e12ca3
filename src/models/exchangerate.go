package models

// ExchangeRate mirrors the structure of the historical exchange rate JSON
// file (ECB daily observations, one entry per currency per day).
type ExchangeRate struct {
	Root struct {
		Obs []struct {
			TimePeriod string `json:"_TIME_PERIOD"`
			ObsValue   string `json:"_OBS_VALUE"`
			Ccy        string `json:"_CCY"`
		} `json:"Obs"`
	} `json:"root"`
}
