package dto

type VerifyPermissionsRequest struct {
	Granted []string `json:"granted"`
}

type SetConfigRequest struct {
	Value string `json:"value"`
	Type  string `json:"type"` // string, bool, int, json
}

type ConfigResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

type UsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PageMeta       `json:"pagination"`
}
