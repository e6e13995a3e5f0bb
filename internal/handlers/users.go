package handlers

import (
	// Стандартные библиотеки
	"log"
	"net/http"
	"strings"

	// Внутренние пакеты
	"photoweb/internal/api"
	"photoweb/internal/middleware"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
)

// ShowUserList отображает справочник пользователей.
// Счётчики фотографий и комментариев приходят готовыми из /user/list.
// Пагинации и поиска нет: на предполагаемом масштабе данных полный
// список - осознанное упрощение.
func (h *Handlers) ShowUserList(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	users, err := h.api.ListUsers(c.Request.Context(), sess.Cookies)
	if err != nil {
		log.Printf("Ошибка получения списка пользователей: %v", err)
		h.renderError(c, http.StatusBadGateway, "Не удалось загрузить список пользователей.")
		return
	}

	data := h.baseData(c, "Пользователи")
	data["users"] = users
	c.HTML(http.StatusOK, "users.html", data)
}

// ShowUserDetail отображает профиль пользователя.
// Кнопка редактирования видна только владельцу профиля.
func (h *Handlers) ShowUserDetail(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	userID := c.Param("userId")

	user, err := h.api.GetUser(c.Request.Context(), sess.Cookies, userID)
	if err != nil {
		log.Printf("Ошибка получения профиля %s: %v", userID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось загрузить профиль пользователя.")
		return
	}

	// Строка контекста в шапке: "Имя Фамилия" просматриваемого профиля.
	sess.SetHeading(user.DisplayName())

	data := h.baseData(c, user.DisplayName())
	data["user"] = user
	data["isOwner"] = sess.User().ID == user.ID
	c.HTML(http.StatusOK, "user_detail.html", data)
}

// ShowUserEdit отображает форму редактирования профиля.
// Редактировать профиль может только его владелец; логин и пароль
// через эту форму не меняются.
func (h *Handlers) ShowUserEdit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	userID := c.Param("userId")

	if sess.User().ID != userID {
		log.Printf("Пользователь %s попытался редактировать чужой профиль %s.", sess.User().ID, userID)
		h.renderError(c, http.StatusForbidden, "Редактировать можно только собственный профиль.")
		return
	}

	user, err := h.api.GetUser(c.Request.Context(), sess.Cookies, userID)
	if err != nil {
		log.Printf("Ошибка получения профиля %s для редактирования: %v", userID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось загрузить профиль пользователя.")
		return
	}

	data := h.baseData(c, "Редактирование профиля")
	data["user"] = user
	data["form"] = api.UpdateUserRequest{
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Location:    user.Location,
		Description: user.Description,
		Occupation:  user.Occupation,
	}
	c.HTML(http.StatusOK, "user_edit.html", data)
}

// HandleUserEdit обрабатывает отправку формы редактирования профиля.
// При успехе локальная копия пользователя заменяется записью, которую
// вернул бэкенд, и происходит возврат на профиль; при ошибке форма
// остаётся открытой с сообщением.
func (h *Handlers) HandleUserEdit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	userID := c.Param("userId")

	if sess.User().ID != userID {
		log.Printf("Пользователь %s попытался изменить чужой профиль %s.", sess.User().ID, userID)
		h.renderError(c, http.StatusForbidden, "Редактировать можно только собственный профиль.")
		return
	}

	upd := api.UpdateUserRequest{
		FirstName:   strings.TrimSpace(c.PostForm("first_name")),
		LastName:    strings.TrimSpace(c.PostForm("last_name")),
		Location:    strings.TrimSpace(c.PostForm("location")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Occupation:  strings.TrimSpace(c.PostForm("occupation")),
	}

	renderEditWithError := func(message string) {
		data := h.baseData(c, "Редактирование профиля")
		data["user"] = sess.User()
		data["form"] = upd
		data["error"] = message
		c.HTML(http.StatusBadRequest, "user_edit.html", data)
	}

	if upd.FirstName == "" || upd.LastName == "" {
		renderEditWithError("Имя и фамилия не могут быть пустыми.")
		return
	}

	updated, err := h.api.UpdateUser(c.Request.Context(), sess.Cookies, userID, upd)
	if err != nil {
		log.Printf("Ошибка обновления профиля %s: %v", userID, err)
		renderEditWithError(api.Message(err))
		return
	}

	// Заменяем локальную копию пользователя авторитетной записью сервера.
	sess.SetUser(updated)
	log.Printf("Пользователь %s обновил свой профиль.", updated.LoginName)
	c.Redirect(http.StatusFound, "/users/"+userID)
}
