package drama

type Video struct {
	Id                 string  `json:"id"`
	Title              string  `json:"title"`
	DisplayName        string  `json:"displayName"`
	Cover              string  `json:"cover"`
	Description        string  `json:"description"`
	SingleEpisodePrice float64 `json:"singleEpisodePrice"`
	AllEpisodesPrice   float64 `json:"allEpisodesPrice"`
	FreeEpisodes       int     `json:"freeEpisodes"`
}

type Episode struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	IsLocked bool   `json:"isLocked"`
}

type UserEpisodes struct {
	Episodes []Episode `json:"episodes"`
	Video    Video     `json:"video"`
}

type PlaySource struct {
	PlayURL string `json:"playurl"`
}

type HomeEntry struct {
	VideoId string `json:"videoId"`
	Title   string `json:"title"`
	Cover   string `json:"cover"`
}

type HomeConfig struct {
	Carousel []HomeEntry `json:"carousel"`
	Hot      []HomeEntry `json:"hot"`
	New      []HomeEntry `json:"new"`
	Rank     []HomeEntry `json:"rank"`
}

type User struct {
	Id       string  `json:"id"`
	Username string  `json:"username"`
	Nickname string  `json:"nickname"`
	Balance  float64 `json:"balance"`
	Level    string  `json:"level"`
}

type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type TempUser struct {
	Id         string `json:"id"`
	Username   string `json:"username"`
	Nickname   string `json:"nickname"`
	ExpireTime string `json:"expireTime"`
}

type TempSession struct {
	TempUser TempUser `json:"tempUser"`
	Token    string   `json:"token"`
}

type Order struct {
	OrderID string `json:"orderID"`
}

type CreatedOrder struct {
	Order  Order  `json:"order"`
	PayURL string `json:"payUrl"`
}

type OrderStatus struct {
	Status int `json:"status"`
}

// Paid order status as reported by the upstream payment service.
const OrderStatusPaid = 2

type ChargingRecord struct {
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
	Status    int     `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

type VVVIPRecord struct {
	UserId     string `json:"userId"`
	ExpireTime string `json:"expireTime"`
}
