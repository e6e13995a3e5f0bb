package main

import (
	// Импорт стандартных библиотек
	"log" // Для логирования
	"net/http"

	// Импорт внутренних пакетов проекта
	"photoweb/internal/api"        // Клиент API бэкенда
	"photoweb/internal/config"     // Конфигурация из окружения
	"photoweb/internal/handlers"   // Обработчики страниц
	"photoweb/internal/middleware" // Middleware проверки аутентификации
	"photoweb/internal/state"      // Реестр сессий в памяти

	// Импорт сторонних библиотек
	"github.com/gin-contrib/sessions"        // Middleware для управления сессиями в Gin
	"github.com/gin-contrib/sessions/cookie" // Хранилище сессий на основе Cookie
	"github.com/gin-gonic/gin"               // Основной веб-фреймворк Gin
)

// main - главная функция приложения, точка входа.
//
// Приложение - тонкий веб-клиент фотогалереи: всё долговременное
// состояние живёт на удалённом бэкенде (cfg.BackendURL), здесь только
// рендеринг представлений и сессии вошедших браузеров в памяти.
func main() {
	// --- 1. Конфигурация ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// --- 2. Инициализация Зависимостей ---
	apiClient := api.NewClient(cfg.BackendURL)
	sessionStore := state.NewStore()
	h := handlers.New(apiClient, sessionStore)

	// Устанавливаем режим работы Gin (ReleaseMode для продакшена).
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Настройка доверенных прокси. `nil` доверяет любому прокси - удобно
	// за обратным прокси в Docker, но убедитесь, что это безопасно в вашей среде.
	log.Println("ПРЕДУПРЕЖДЕНИЕ: Установка доверенных прокси в nil. Убедитесь, что это безопасно в вашей среде.")
	if err := router.SetTrustedProxies(nil); err != nil {
		log.Fatalf("Ошибка установки доверенных прокси: %v", err)
	}

	// Максимальный размер multipart-формы, хранимой в памяти.
	router.MaxMultipartMemory = 10 << 20

	// Cookie браузера несёт только идентификатор сессии; данные сессии
	// живут в sessionStore и пропадают при перезапуске процесса -
	// перезапуск требует повторного входа, это осознанное решение.
	store := cookie.NewStore([]byte(cfg.CookieSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // Сутки; реальное время жизни ограничено реестром в памяти
		HttpOnly: true,  // Запрещает доступ к cookie из JavaScript (защита от XSS)
		Secure:   false, // Для HTTPS за прокси установите true
	})

	// --- 3. Подключение Middleware ---
	router.Use(sessions.Sessions("photoweb_session", store))

	// --- 4. Настройка Статики и Шаблонов ---
	router.LoadHTMLGlob("web/templates/*")
	router.Static("/static", "./web/static")

	// --- 5. Определение Маршрутов (Роутинг) ---

	// Публичные маршруты: вход и регистрация. Уже вошедших пользователей
	// сами обработчики уводят с этих страниц.
	public := router.Group("/")
	{
		public.GET("/login", h.ShowLoginPage)
		public.POST("/login", h.HandleLogin)
		public.GET("/register", h.ShowRegisterPage)
		public.POST("/register", h.HandleRegister)
	}

	// Защищённая группа: ворота аутентификации навешиваются один раз
	// на всё поддерево, а не на каждый маршрут.
	protected := router.Group("/")
	protected.Use(middleware.AuthRequired(sessionStore))
	{
		protected.GET("/users", h.ShowUserList)
		protected.GET("/users/:userId", h.ShowUserDetail)
		protected.GET("/users/:userId/edit", h.ShowUserEdit)
		protected.POST("/users/:userId/edit", h.HandleUserEdit)

		protected.GET("/photos/:userId", h.ShowUserPhotos)
		protected.POST("/photos/:photoId/like", h.HandleLike)
		protected.POST("/photos/:photoId/delete", h.HandlePhotoDelete)

		// Маршруты комментариев живут под собственным префиксом:
		// первый параметр - фотография, второй - комментарий.
		protected.POST("/comments/:photoId", h.HandleCommentAdd)
		protected.GET("/comments/:photoId/:commentId/edit", h.ShowCommentEdit)
		protected.POST("/comments/:photoId/:commentId/edit", h.HandleCommentEdit)
		protected.POST("/comments/:photoId/:commentId/delete", h.HandleCommentDelete)

		protected.GET("/upload", h.ShowUploadPage)
		protected.POST("/upload", h.HandleUpload)
		protected.POST("/logout", h.HandleLogout)

		// Корень и все несуществующие пути уводят в справочник пользователей.
		protected.GET("/", func(c *gin.Context) {
			c.Redirect(http.StatusFound, "/users")
		})
	}
	router.NoRoute(middleware.AuthRequired(sessionStore), func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/users")
	})

	// --- 6. Запуск Сервера ---
	listenAddr := ":" + cfg.ServerPort
	log.Printf("Веб-клиент запускается на %s (бэкенд: %s)", listenAddr, cfg.BackendURL)

	if err := router.Run(listenAddr); err != nil {
		log.Fatalf("Не удалось запустить сервер: %v", err)
	}
}
