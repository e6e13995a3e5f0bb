package config

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
// Единственная по-настоящему важная настройка - адрес бэкенда:
// всё долговременное состояние (пользователи, фото, комментарии, лайки)
// живёт на его стороне, мы лишь рендерим его данные.
type Config struct {
	// BackendURL - базовый адрес API бэкенда (без завершающего слэша).
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8081"`
	// ServerPort - порт, на котором слушает само веб-приложение.
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	// CookieSecret - секрет для подписи cookie сессий.
	CookieSecret string `env:"COOKIE_SECRET"`
}

// LoadConfig загружает конфигурацию из переменных окружения.
// В режиме разработки пытается загрузить .env файл, если он есть рядом.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); !os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("ошибка загрузки .env файла: %w", err)
		}
	}

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации из окружения: %w", err)
	}

	// Секрет cookie обязателен для продакшена, но для локального запуска
	// подставляем значение по умолчанию с предупреждением, чтобы не падать.
	if cfg.CookieSecret == "" {
		log.Println("ПРЕДУПРЕЖДЕНИЕ: COOKIE_SECRET не установлен, используется небезопасное значение по умолчанию.")
		cfg.CookieSecret = "fallback-secret-change-in-production"
	}

	return &cfg, nil
}
