package config

import (
	"encoding/base64"
	"fmt"
)

type Config struct {
	ServerAddr       string
	DatabaseDSN      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	SigningKey       []byte
	AllowedOrigins   []string
	MailerSendAPIKey string
	MailFromName     string
	MailFromEmail    string
	MigrationsPath   string
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

type Params struct {
	ServerAddr       string
	DatabaseDSN      string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	Base64Secret     string
	AllowedOrigins   []string
	MailerSendAPIKey string
	MailFromName     string
	MailFromEmail    string
	MigrationsPath   string
}

func NewConfig(p Params) (*Config, error) {
	if p.ServerAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if p.DatabaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if p.Base64Secret == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	if p.MailerSendAPIKey != "" && p.MailFromEmail == "" {
		return nil, fmt.Errorf("mail sender address required when MailerSend is configured")
	}

	// Decode the base64 encoded signing secret
	signingKey, err := decodeSigningSecret(p.Base64Secret)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		ServerAddr:       p.ServerAddr,
		DatabaseDSN:      p.DatabaseDSN,
		RedisAddr:        p.RedisAddr,
		RedisPassword:    p.RedisPassword,
		RedisDB:          p.RedisDB,
		SigningKey:       signingKey,
		AllowedOrigins:   p.AllowedOrigins,
		MailerSendAPIKey: p.MailerSendAPIKey,
		MailFromName:     p.MailFromName,
		MailFromEmail:    p.MailFromEmail,
		MigrationsPath:   p.MigrationsPath,
	}, nil
}
