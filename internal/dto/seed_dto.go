package dto

type SeedRequest struct {
	ClearData bool `json:"clear_data"`
	UserCount int  `json:"user_count" validate:"omitempty,min=0,max=1000"`
	FormCount int  `json:"form_count" validate:"omitempty,min=0,max=1000"`
}

type SeedResult struct {
	UsersCreated  int  `json:"users_created"`
	FormsCreated  int  `json:"forms_created"`
	TokensCreated int  `json:"tokens_created"`
	DataCleared   bool `json:"data_cleared"`
}

type ClearResult struct {
	TokensDeleted int64 `json:"tokens_deleted"`
	FormsDeleted  int64 `json:"forms_deleted"`
	UsersDeleted  int64 `json:"users_deleted"`
}

type SeedStatus struct {
	Tables        map[string]int64 `json:"tables"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
	UsersByStatus map[string]int64 `json:"users_by_status"`
}

type HealthData struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
