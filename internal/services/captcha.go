package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CaptchaVerifyURL points at Google's siteverify endpoint. Tests swap it for
// a local server.
var CaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

var captchaClient = &http.Client{
	Timeout: 10 * time.Second,
}

type captchaVerifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// VerifyCaptcha checks a client-supplied captcha token against the
// verification endpoint using the shared secret. It returns whether the
// token passed; a transport or decode failure is an error, not a rejection.
func VerifyCaptcha(secret, token string) (bool, error) {
	form := url.Values{
		"secret":   {secret},
		"response": {token},
	}

	resp, err := captchaClient.PostForm(CaptchaVerifyURL, form)

	if err != nil {
		return false, fmt.Errorf("captcha verification request: %w", err)
	}

	defer resp.Body.Close()

	var result captchaVerifyResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("captcha verification response: %w", err)
	}

	return result.Success, nil
}
