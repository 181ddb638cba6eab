package api

import "context"

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string `json:"token"`
}

// AdminLogin exchanges credentials for an opaque bearer token. The
// token is never inspected client-side; rejected credentials surface
// as ErrUnauthorized.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (string, error) {
	var resp loginResp
	if err := c.postJSON(ctx, "/admin/login", loginReq{Username: username, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}
