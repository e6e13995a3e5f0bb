// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"photoweb/internal/models"
)

// Client представляет клиент для взаимодействия с API бэкенда фотогалереи.
// Всё долговременное состояние живёт на бэкенде; клиент только выполняет
// запросы и нормализует ответы для представлений.
type Client struct {
	httpClient *http.Client // HTTP-клиент для выполнения запросов
	baseURL    string       // Базовый адрес бэкенда, например http://localhost:8081
}

// NewClient создает новый экземпляр Client.
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second}, // Таймаут на все запросы к бэкенду
		baseURL:    baseURL,
	}
}

// Error - ожидаемый отрицательный ответ бэкенда (не-2xx со статусом и
// сообщением вида {"message": "..."}). Это восстановимая ошибка уровня
// "неверный пароль", а не сбой транспорта: представления показывают
// Message пользователю и остаются интерактивными.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("бэкенд вернул статус %d: %s", e.Status, e.Message)
}

// Message извлекает из ошибки сообщение для пользователя.
// Для *Error это сообщение сервера, для остального - общая заглушка.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Произошла ошибка при обращении к серверу."
}

// errorBody - форма тела ошибки бэкенда.
type errorBody struct {
	Message string `json:"message"`
}

// newError читает тело не-2xx ответа и строит *Error.
// Если тело не парсится как {"message": ...}, подставляется общее сообщение.
func newError(resp *http.Response) *Error {
	apiErr := &Error{Status: resp.StatusCode, Message: "Запрос отклонён сервером."}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiErr
	}
	var body errorBody
	if err := json.Unmarshal(bodyBytes, &body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}

// do выполняет запрос к бэкенду: собирает URL, прикладывает cookie сессии
// бэкенда (если есть) и переводит не-2xx ответы в *Error.
// Тело успешного ответа декодируется в out, если out не nil.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, cookies []*http.Cookie, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	// Cookie сессии бэкенда - это "credentials: include" исходного клиента.
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения HTTP-запроса к бэкенду: %w", err)
	}
	defer resp.Body.Close() // Важно закрыть тело ответа

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("ошибка декодирования JSON ответа бэкенда: %w", err)
		}
	}
	return nil
}

// doJSON сериализует payload в JSON и выполняет запрос.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, cookies []*http.Cookie, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ошибка сериализации тела запроса: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", cookies, out)
}

// loginRequest - тело запроса аутентификации.
type loginRequest struct {
	LoginName string `json:"login_name"`
	Password  string `json:"password"`
}

// Login аутентифицирует пользователя на бэкенде.
// При успехе возвращает запись пользователя и cookie сессии бэкенда,
// которые дальше прикладываются ко всем запросам этой сессии.
func (c *Client) Login(ctx context.Context, loginName, password string) (*models.User, []*http.Cookie, error) {
	data, err := json.Marshal(loginRequest{LoginName: loginName, Password: password})
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка сериализации тела запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/login", bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка выполнения HTTP-запроса к бэкенду: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, newError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, nil, fmt.Errorf("ошибка декодирования JSON ответа бэкенда: %w", err)
	}
	// Set-Cookie ответа - учётные данные сессии на стороне бэкенда.
	return &user, resp.Cookies(), nil
}

// Logout завершает сессию на бэкенде.
// Вызывающий код очищает локальную сессию независимо от результата.
func (c *Client) Logout(ctx context.Context, cookies []*http.Cookie) error {
	return c.doJSON(ctx, http.MethodPost, "/admin/logout", struct{}{}, cookies, nil)
}

// RegisterRequest - данные формы регистрации нового пользователя.
// Подтверждение пароля проверяется до сетевого вызова и на сервер не уходит.
type RegisterRequest struct {
	LoginName   string `json:"login_name"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
}

// Register создает нового пользователя. Успех не означает вход:
// пользователь после регистрации направляется на страницу входа.
func (c *Client) Register(ctx context.Context, reg RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPost, "/user", reg, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers возвращает справочник пользователей со счётчиками
// фотографий и комментариев, посчитанными бэкендом.
func (c *Client) ListUsers(ctx context.Context, cookies []*http.Cookie) ([]models.UserListEntry, error) {
	var users []models.UserListEntry
	if err := c.do(ctx, http.MethodGet, "/user/list", nil, "", cookies, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser возвращает профиль пользователя по id.
func (c *Client) GetUser(ctx context.Context, cookies []*http.Cookie, id string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/user/"+id, nil, "", cookies, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserRequest - редактируемые поля профиля.
// Логин и пароль через эту форму не меняются.
type UpdateUserRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
}

// UpdateUser обновляет профиль и возвращает обновлённую запись сервера.
func (c *Client) UpdateUser(ctx context.Context, cookies []*http.Cookie, id string, upd UpdateUserRequest) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodPut, "/user/"+id, upd, cookies, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// PhotosOfUser возвращает ленту фотографий пользователя с вложенными
// комментариями и лайками.
func (c *Client) PhotosOfUser(ctx context.Context, cookies []*http.Cookie, userID string) ([]models.Photo, error) {
	var photos []models.Photo
	if err := c.do(ctx, http.MethodGet, "/photosOfUser/"+userID, nil, "", cookies, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// UploadPhoto отправляет файл изображения как multipart-форму с единственным
// полем "file". Владельца бэкенд определяет по cookie сессии, id клиента
// не передаётся. Content-Type multipart-формы выставляет сам writer.
func (c *Client) UploadPhoto(ctx context.Context, cookies []*http.Cookie, filename string, file io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("ошибка подготовки multipart-формы: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("ошибка копирования файла в тело запроса: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("ошибка завершения multipart-формы: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/photos/new", &buf, w.FormDataContentType(), cookies, nil)
}

// DeletePhoto удаляет фотографию. Право владельца проверяет бэкенд,
// клиент дополнительно прячет действие за воротами владельца в UI.
func (c *Client) DeletePhoto(ctx context.Context, cookies []*http.Cookie, photoID string) error {
	return c.do(ctx, http.MethodDelete, "/photos/"+photoID, nil, "", cookies, nil)
}

// likeRequest - тело запроса переключения лайка.
type likeRequest struct {
	UserID string `json:"user_id"`
}

// ToggleLike переключает лайк текущего пользователя на фотографии.
// Это именно переключение на стороне сервера, а не инкремент: после вызова
// представление перезапрашивает ленту и показывает авторитетное состояние.
func (c *Client) ToggleLike(ctx context.Context, cookies []*http.Cookie, photoID, userID string) error {
	return c.doJSON(ctx, http.MethodPost, "/photos/like/"+photoID, likeRequest{UserID: userID}, cookies, nil)
}

// commentRequest - тело запроса добавления комментария.
type commentRequest struct {
	Comment string `json:"comment"`
}

// AddComment добавляет комментарий к фотографии.
func (c *Client) AddComment(ctx context.Context, cookies []*http.Cookie, photoID, text string) error {
	return c.doJSON(ctx, http.MethodPost, "/comment/commentsOfPhoto/"+photoID, commentRequest{Comment: text}, cookies, nil)
}

// editCommentRequest - тело запроса редактирования комментария.
type editCommentRequest struct {
	NewText string `json:"new_text"`
}

// EditComment меняет текст комментария. Авторство при этом не меняется.
func (c *Client) EditComment(ctx context.Context, cookies []*http.Cookie, photoID, commentID, newText string) error {
	return c.doJSON(ctx, http.MethodPut, "/comment/edit/"+photoID+"/"+commentID, editCommentRequest{NewText: newText}, cookies, nil)
}

// DeleteComment удаляет комментарий.
func (c *Client) DeleteComment(ctx context.Context, cookies []*http.Cookie, photoID, commentID string) error {
	return c.do(ctx, http.MethodDelete, "/comment/delete/"+photoID+"/"+commentID, nil, "", cookies, nil)
}

// ImageURL возвращает прямой адрес статики бэкенда для файла изображения.
// Картинки подставляются в разметку напрямую, без проксирования.
func (c *Client) ImageURL(fileName string) string {
	return c.baseURL + "/images/" + fileName
}
