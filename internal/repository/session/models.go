package session

type Feed struct {
	VideoId            string  `redis:"video_id"`
	CurrentIndex       int     `redis:"current_index"`
	EpisodeCount       int     `redis:"episode_count"`
	FreeEpisodes       int     `redis:"free_episodes"`
	SingleEpisodePrice float64 `redis:"single_episode_price"`
	AllEpisodesPrice   float64 `redis:"all_episodes_price"`
	UserId             string  `redis:"user_id"`
	UserToken          string  `redis:"user_token"`
}

type Episode struct {
	Id       string `redis:"id"`
	Title    string `redis:"title"`
	IsLocked bool   `redis:"is_locked"`
}

type PendingOrder struct {
	OrderId     string  `redis:"order_id"`
	PayURL      string  `redis:"pay_url"`
	Amount      float64 `redis:"amount"`
	TargetId    string  `redis:"target_id"`
	AllEpisodes bool    `redis:"all_episodes"`
}
