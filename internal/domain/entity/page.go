package entity

type Screenshot struct {
	Data   []byte `json:"data"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
