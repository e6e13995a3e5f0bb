package handlers

import (
	// Стандартные библиотеки
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	// Внутренние пакеты
	"photoweb/internal/api"
	"photoweb/internal/middleware"
	"photoweb/internal/state"

	// Сторонние библиотеки
	"github.com/gin-contrib/sessions" // Cookie-сессии нужны для хранения sid
	"github.com/gin-gonic/gin"
)

// Константы для ограничений загрузки
const (
	MaxUploadSize = 10 << 20 // Лимит самого файла, 10 МБ
	// uploadSlack - запас поверх лимита файла на служебные части
	// multipart-формы (границы, заголовки полей).
	uploadSlack = 1 << 20
)

// allowedImageTypes - карта разрешенных MIME-типов изображений.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// Handlers объединяет обработчики всех страниц приложения.
// Зависимости: клиент API бэкенда и реестр локальных сессий.
type Handlers struct {
	api      *api.Client
	sessions *state.Store
}

// New создает набор обработчиков с его зависимостями.
func New(apiClient *api.Client, sessionStore *state.Store) *Handlers {
	return &Handlers{
		api:      apiClient,
		sessions: sessionStore,
	}
}

// currentSession возвращает сессию текущего запроса или nil.
// Внутри защищённой группы сессию кладёт в контекст middleware;
// на публичных страницах (вход, регистрация) проверяем cookie вручную.
func (h *Handlers) currentSession(c *gin.Context) *state.Session {
	if sess := middleware.CurrentSession(c); sess != nil {
		return sess
	}
	cookieSession := sessions.Default(c)
	sid, ok := cookieSession.Get("sid").(string)
	if !ok {
		return nil
	}
	sess, found := h.sessions.Get(sid)
	if !found {
		return nil
	}
	return sess
}

// baseData собирает общие данные шапки для всех шаблонов:
// заголовок вкладки, текущего пользователя и строку контекста.
func (h *Handlers) baseData(c *gin.Context, title string) gin.H {
	data := gin.H{
		"title":   title,
		"heading": state.DefaultHeading,
	}
	if sess := h.currentSession(c); sess != nil {
		data["sessionUser"] = sess.User()
		data["heading"] = sess.Heading()
	}
	return data
}

// renderError отображает страницу-заглушку вместо частично отрисованного
// представления, когда не удалось получить его основной ресурс.
func (h *Handlers) renderError(c *gin.Context, status int, message string) {
	data := h.baseData(c, "Ошибка")
	data["message"] = message
	c.HTML(status, "error.html", data)
}

// ShowLoginPage отображает страницу входа.
// Уже аутентифицированного пользователя уводит на его профиль.
func (h *Handlers) ShowLoginPage(c *gin.Context) {
	if sess := h.currentSession(c); sess != nil {
		c.Redirect(http.StatusFound, "/users/"+sess.User().ID)
		return
	}
	c.HTML(http.StatusOK, "login.html", h.baseData(c, "Вход"))
}

// HandleLogin обрабатывает POST-запрос с формы входа.
// При ошибках рендерит login.html с сообщением.
// При успехе создаёт локальную сессию и редиректит на профиль.
func (h *Handlers) HandleLogin(c *gin.Context) {
	loginName := strings.TrimSpace(c.PostForm("login_name"))
	password := c.PostForm("password")

	// Функция для рендеринга страницы входа с ошибкой
	renderLoginWithError := func(status int, message string) {
		data := h.baseData(c, "Вход")
		data["error"] = message
		data["login_name"] = loginName
		c.HTML(status, "login.html", data)
	}

	// Валидация до сетевого вызова
	if loginName == "" || password == "" {
		renderLoginWithError(http.StatusBadRequest, "Логин и пароль не могут быть пустыми")
		return
	}

	user, cookies, err := h.api.Login(c.Request.Context(), loginName, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			// Ожидаемый отказ бэкенда (неверный пароль и т.п.) - показываем
			// его сообщение, локальная сессия остаётся отсутствующей.
			log.Printf("Неудачная попытка входа для '%s': %v", loginName, err)
			renderLoginWithError(http.StatusUnauthorized, apiErr.Message)
			return
		}
		log.Printf("Ошибка обращения к бэкенду при входе '%s': %v", loginName, err)
		renderLoginWithError(http.StatusInternalServerError, "Ошибка сервера при проверке данных.")
		return
	}

	// Успешный вход - регистрируем сессию и сохраняем её id в cookie.
	sess := h.sessions.New(user, cookies)
	cookieSession := sessions.Default(c)
	cookieSession.Set("sid", sess.ID)
	if err := cookieSession.Save(); err != nil {
		log.Printf("Ошибка сохранения cookie после входа пользователя %s: %v", user.LoginName, err)
		h.sessions.Delete(sess.ID)
		renderLoginWithError(http.StatusInternalServerError, "Не удалось сохранить данные сессии.")
		return
	}

	log.Printf("Пользователь %s (ID: %s) успешно вошел в систему.", user.LoginName, user.ID)
	c.Redirect(http.StatusFound, "/users/"+user.ID)
}

// ShowRegisterPage отображает страницу регистрации.
// Уже аутентифицированного пользователя уводит в справочник.
func (h *Handlers) ShowRegisterPage(c *gin.Context) {
	if h.currentSession(c) != nil {
		c.Redirect(http.StatusFound, "/users")
		return
	}
	data := h.baseData(c, "Регистрация")
	// Пустая форма, чтобы шаблон всегда имел поля для подстановки.
	data["form"] = api.RegisterRequest{}
	c.HTML(http.StatusOK, "register.html", data)
}

// HandleRegister обрабатывает POST-запрос с формы регистрации.
// Все проверки формы выполняются до сетевого вызова; подтверждение
// пароля на сервер не отправляется. При успехе рендерит страницу ВХОДА
// с сообщением об успехе - автоматического входа нет.
func (h *Handlers) HandleRegister(c *gin.Context) {
	reg := api.RegisterRequest{
		LoginName:   strings.TrimSpace(c.PostForm("login_name")),
		Password:    c.PostForm("password"),
		FirstName:   strings.TrimSpace(c.PostForm("first_name")),
		LastName:    strings.TrimSpace(c.PostForm("last_name")),
		Location:    strings.TrimSpace(c.PostForm("location")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Occupation:  strings.TrimSpace(c.PostForm("occupation")),
	}
	passwordConfirm := c.PostForm("confirm_password")

	// Функция для рендеринга страницы регистрации с ошибкой.
	// Введённые значения (кроме паролей) возвращаются в форму.
	renderRegisterWithError := func(message string) {
		data := h.baseData(c, "Регистрация")
		data["error"] = message
		data["form"] = reg
		c.HTML(http.StatusBadRequest, "register.html", data)
	}

	// Валидация
	if reg.LoginName == "" || reg.Password == "" || reg.FirstName == "" || reg.LastName == "" {
		renderRegisterWithError("Заполните все обязательные поля (*)")
		return
	}
	if reg.Password != passwordConfirm {
		renderRegisterWithError("Пароли не совпадают")
		return
	}

	if _, err := h.api.Register(c.Request.Context(), reg); err != nil {
		log.Printf("Ошибка регистрации пользователя %s: %v", reg.LoginName, err)
		renderRegisterWithError(api.Message(err))
		return
	}

	// Успешная регистрация - рендерим страницу ВХОДА с сообщением об успехе
	log.Printf("Пользователь %s успешно зарегистрирован.", reg.LoginName)
	data := h.baseData(c, "Вход")
	data["success"] = "Вы успешно зарегистрированы! Теперь вы можете войти."
	c.HTML(http.StatusOK, "login.html", data)
}

// HandleLogout завершает сессию. Локальная сессия уничтожается
// безусловно и до обращения к бэкенду: неудачный сетевой вызов не должен
// оставить пользователя в сломанном "наполовину вошедшем" состоянии.
func (h *Handlers) HandleLogout(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	cookieSession := sessions.Default(c)
	cookieSession.Delete("sid")
	cookieSession.Options(sessions.Options{MaxAge: -1})
	if err := cookieSession.Save(); err != nil {
		log.Printf("Ошибка сохранения cookie после выхода: %v", err)
	}

	if sess != nil {
		h.sessions.Delete(sess.ID)
		if err := h.api.Logout(c.Request.Context(), sess.Cookies); err != nil {
			// Бэкенд не подтвердил выход - локально сессии уже нет, просто логируем.
			log.Printf("Ошибка завершения сессии на бэкенде (пользователь %s): %v", sess.User().LoginName, err)
		}
		log.Printf("Пользователь %s вышел из системы.", sess.User().LoginName)
	}

	c.Redirect(http.StatusFound, "/login")
}

// ShowUploadPage отображает страницу загрузки фотографии.
func (h *Handlers) ShowUploadPage(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", h.baseData(c, "Загрузка фотографии"))
}

// HandleUpload обрабатывает загрузку фотографии: принимает один файл
// изображения из формы и пересылает его бэкенду multipart-запросом.
// Владельца фотографии бэкенд определяет по своей сессии.
func (h *Handlers) HandleUpload(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+uploadSlack)

	// Функция для рендеринга страницы загрузки с ошибкой.
	// Форма остаётся на месте, пользователь может повторить попытку.
	renderUploadWithError := func(status int, message string) {
		data := h.baseData(c, "Загрузка фотографии")
		data["error"] = message
		c.HTML(status, "upload.html", data)
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		renderUploadWithError(http.StatusBadRequest, "Вы не выбрали файл.")
		return
	}
	if fileHeader.Size == 0 {
		renderUploadWithError(http.StatusBadRequest, "Выбранный файл пуст.")
		return
	}
	if fileHeader.Size > MaxUploadSize {
		renderUploadWithError(http.StatusBadRequest, "Файл слишком большой (максимум 10 MB).")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Printf("Не удалось открыть загруженный файл '%s': %v", fileHeader.Filename, err)
		renderUploadWithError(http.StatusInternalServerError, "Ошибка обработки файла.")
		return
	}
	defer file.Close()

	// Определяем реальный тип файла по первым 512 байтам,
	// а не по расширению из имени.
	buffer := make([]byte, 512)
	if _, err := file.Read(buffer); err != nil && err != io.EOF {
		log.Printf("Не удалось прочитать первые 512 байт файла '%s': %v", fileHeader.Filename, err)
		renderUploadWithError(http.StatusInternalServerError, "Ошибка обработки файла.")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		log.Printf("Не удалось вернуть указатель файла '%s' в начало: %v", fileHeader.Filename, err)
		renderUploadWithError(http.StatusInternalServerError, "Ошибка обработки файла.")
		return
	}
	contentType := http.DetectContentType(buffer)
	if !allowedImageTypes[contentType] {
		renderUploadWithError(http.StatusBadRequest, "Недопустимый тип файла (разрешены JPEG, PNG, GIF).")
		return
	}

	if err := h.api.UploadPhoto(c.Request.Context(), sess.Cookies, fileHeader.Filename, file); err != nil {
		log.Printf("Ошибка загрузки файла '%s' на бэкенд (пользователь %s): %v", fileHeader.Filename, sess.User().LoginName, err)
		renderUploadWithError(http.StatusBadGateway, "Не удалось загрузить фотографию.")
		return
	}

	log.Printf("Пользователь %s загрузил фотографию '%s'.", sess.User().LoginName, fileHeader.Filename)
	c.Redirect(http.StatusFound, "/users")
}
