package handlers

import (
	// Стандартные библиотеки
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	// Внутренние пакеты
	"photoweb/internal/middleware"
	"photoweb/internal/models"
	"photoweb/internal/state"

	// Сторонние библиотеки
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup" // Параллельная загрузка профиля и ленты
)

// commentView - комментарий, подготовленный для шаблона:
// нормализованный автор и флаг "это комментарий текущего пользователя".
type commentView struct {
	ID       string
	Text     string
	DateTime time.Time
	Author   models.UserRef
	IsAuthor bool // Управляет видимостью кнопок редактирования/удаления
}

// photoView - фотография, подготовленная для шаблона.
type photoView struct {
	ID        string
	FileName  string
	DateTime  time.Time
	ImageURL  string
	IsLiked   bool
	IsOwner   bool // Управляет видимостью кнопки удаления фотографии
	LikeCount int
	Comments  []commentView
}

// buildPhotoViews превращает ответ бэкенда в готовые для рендеринга
// структуры: все проверки принадлежности выполняются здесь один раз.
func buildPhotoViews(photos []models.Photo, sessionUserID string, imageURL func(string) string) []photoView {
	views := make([]photoView, 0, len(photos))
	for _, p := range photos {
		pv := photoView{
			ID:        p.ID,
			FileName:  p.FileName,
			DateTime:  p.DateTime,
			ImageURL:  imageURL(p.FileName),
			IsLiked:   p.IsLikedBy(sessionUserID),
			IsOwner:   p.UserID == sessionUserID,
			LikeCount: p.LikeCount(),
		}
		for _, cm := range p.Comments {
			author := cm.Author()
			pv.Comments = append(pv.Comments, commentView{
				ID:       cm.ID,
				Text:     cm.Comment,
				DateTime: cm.DateTime,
				Author:   author,
				IsAuthor: author.ID == sessionUserID,
			})
		}
		views = append(views, pv)
	}
	return views
}

// ShowUserPhotos отображает ленту фотографий пользователя.
// Профиль (для шапки) и лента запрашиваются параллельно; ошибка любого
// из двух запросов прерывает оба и превращается в одну страницу ошибки.
func (h *Handlers) ShowUserPhotos(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	userID := c.Param("userId")

	var (
		user   *models.User
		photos []models.Photo
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		user, err = h.api.GetUser(ctx, sess.Cookies, userID)
		return err
	})
	g.Go(func() error {
		var err error
		photos, err = h.api.PhotosOfUser(ctx, sess.Cookies, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Printf("Ошибка загрузки ленты пользователя %s: %v", userID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось загрузить фотографии.")
		return
	}

	// Строка контекста в шапке: "Photos of Имя Фамилия".
	sess.SetHeading("Photos of " + user.DisplayName())

	data := h.baseData(c, "Фотографии")
	data["feedUser"] = user
	data["photos"] = buildPhotoViews(photos, sess.User().ID, h.api.ImageURL)
	c.HTML(http.StatusOK, "user_photos.html", data)
}

// findPhoto перезапрашивает ленту владельца и находит в ней фотографию.
// Используется мутирующими обработчиками для серверной проверки ворот
// владения: скрытых в UI кнопок недостаточно, прямой запрос тоже
// должен быть отвергнут.
func (h *Handlers) findPhoto(ctx context.Context, sess *state.Session, feedUserID, photoID string) (*models.Photo, error) {
	photos, err := h.api.PhotosOfUser(ctx, sess.Cookies, feedUserID)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		if photos[i].ID == photoID {
			return &photos[i], nil
		}
	}
	return nil, fmt.Errorf("фотография %s не найдена в ленте пользователя %s", photoID, feedUserID)
}

// findComment находит комментарий в фотографии.
func findComment(photo *models.Photo, commentID string) *models.Comment {
	for i := range photo.Comments {
		if photo.Comments[i].ID == commentID {
			return &photo.Comments[i]
		}
	}
	return nil
}

// feedRedirect возвращает пользователя в ленту, из которой пришло
// действие. Редирект на GET и есть повторная загрузка: после любой
// мутации лента рендерится из свежего ответа бэкенда, локальные копии
// не правятся.
func feedRedirect(c *gin.Context) {
	feedUser := c.PostForm("feed_user")
	if feedUser == "" {
		c.Redirect(http.StatusFound, "/users")
		return
	}
	c.Redirect(http.StatusFound, "/photos/"+feedUser)
}

// HandleLike переключает лайк текущего пользователя на фотографии.
// Бэкенд выполняет именно переключение, поэтому локально счётчик не
// трогается: последующий рендер ленты показывает авторитетное состояние.
func (h *Handlers) HandleLike(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	photoID := c.Param("photoId")

	if err := h.api.ToggleLike(c.Request.Context(), sess.Cookies, photoID, sess.User().ID); err != nil {
		log.Printf("Ошибка переключения лайка фотографии %s (пользователь %s): %v", photoID, sess.User().ID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось изменить лайк.")
		return
	}
	feedRedirect(c)
}

// HandleCommentAdd добавляет комментарий к фотографии.
// Пустой или состоящий из пробелов текст отбрасывается без сетевого
// вызова - просто возврат в ленту.
func (h *Handlers) HandleCommentAdd(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	photoID := c.Param("photoId")

	text := strings.TrimSpace(c.PostForm("comment"))
	if text == "" {
		feedRedirect(c)
		return
	}

	if err := h.api.AddComment(c.Request.Context(), sess.Cookies, photoID, text); err != nil {
		log.Printf("Ошибка добавления комментария к фотографии %s: %v", photoID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось добавить комментарий.")
		return
	}
	feedRedirect(c)
}

// ShowCommentEdit отображает форму редактирования комментария,
// предзаполненную текущим текстом. Редактировать комментарий может
// только его автор. Ссылка "Отмена" возвращает в ленту без запроса.
func (h *Handlers) ShowCommentEdit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	photoID := c.Param("photoId")
	commentID := c.Param("commentId")
	feedUser := c.Query("feed_user")

	photo, err := h.findPhoto(c.Request.Context(), sess, feedUser, photoID)
	if err != nil {
		log.Printf("Ошибка поиска фотографии %s для редактирования комментария: %v", photoID, err)
		h.renderError(c, http.StatusNotFound, "Фотография не найдена.")
		return
	}
	comment := findComment(photo, commentID)
	if comment == nil {
		h.renderError(c, http.StatusNotFound, "Комментарий не найден.")
		return
	}
	if comment.Author().ID != sess.User().ID {
		log.Printf("Пользователь %s попытался редактировать чужой комментарий %s.", sess.User().ID, commentID)
		h.renderError(c, http.StatusForbidden, "Редактировать можно только собственные комментарии.")
		return
	}

	data := h.baseData(c, "Редактирование комментария")
	data["photoID"] = photoID
	data["commentID"] = commentID
	data["feedUser"] = feedUser
	data["text"] = comment.Comment
	c.HTML(http.StatusOK, "comment_edit.html", data)
}

// HandleCommentEdit сохраняет отредактированный текст комментария.
// Пустой после обрезки пробелов текст - no-op с возвратом в ленту.
// Ворота автора проверяются заново по свежим данным бэкенда.
func (h *Handlers) HandleCommentEdit(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	photoID := c.Param("photoId")
	commentID := c.Param("commentId")

	newText := strings.TrimSpace(c.PostForm("new_text"))
	if newText == "" {
		feedRedirect(c)
		return
	}

	photo, err := h.findPhoto(c.Request.Context(), sess, c.PostForm("feed_user"), photoID)
	if err != nil {
		log.Printf("Ошибка поиска фотографии %s для редактирования комментария: %v", photoID, err)
		h.renderError(c, http.StatusNotFound, "Фотография не найдена.")
		return
	}
	comment := findComment(photo, commentID)
	if comment == nil {
		h.renderError(c, http.StatusNotFound, "Комментарий не найден.")
		return
	}
	if comment.Author().ID != sess.User().ID {
		log.Printf("Пользователь %s попытался изменить чужой комментарий %s.", sess.User().ID, commentID)
		h.renderError(c, http.StatusForbidden, "Редактировать можно только собственные комментарии.")
		return
	}

	if err := h.api.EditComment(c.Request.Context(), sess.Cookies, photoID, commentID, newText); err != nil {
		log.Printf("Ошибка редактирования комментария %s: %v", commentID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось сохранить комментарий.")
		return
	}
	feedRedirect(c)
}

// HandleCommentDelete удаляет комментарий.
// Подтверждение запрашивается в шаблоне до отправки формы; здесь
// заново проверяются ворота автора.
func (h *Handlers) HandleCommentDelete(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	photoID := c.Param("photoId")
	commentID := c.Param("commentId")

	photo, err := h.findPhoto(c.Request.Context(), sess, c.PostForm("feed_user"), photoID)
	if err != nil {
		log.Printf("Ошибка поиска фотографии %s для удаления комментария: %v", photoID, err)
		h.renderError(c, http.StatusNotFound, "Фотография не найдена.")
		return
	}
	comment := findComment(photo, commentID)
	if comment == nil {
		h.renderError(c, http.StatusNotFound, "Комментарий не найден.")
		return
	}
	if comment.Author().ID != sess.User().ID {
		log.Printf("Пользователь %s попытался удалить чужой комментарий %s.", sess.User().ID, commentID)
		h.renderError(c, http.StatusForbidden, "Удалять можно только собственные комментарии.")
		return
	}

	if err := h.api.DeleteComment(c.Request.Context(), sess.Cookies, photoID, commentID); err != nil {
		log.Printf("Ошибка удаления комментария %s: %v", commentID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось удалить комментарий.")
		return
	}
	feedRedirect(c)
}

// HandlePhotoDelete удаляет фотографию. Доступно только владельцу
// ленты (photo.user_id равен id текущего пользователя); подтверждение
// запрашивается в шаблоне. После успеха редирект в ленту, где
// фотографии уже нет.
func (h *Handlers) HandlePhotoDelete(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	photoID := c.Param("photoId")

	photo, err := h.findPhoto(c.Request.Context(), sess, c.PostForm("feed_user"), photoID)
	if err != nil {
		log.Printf("Ошибка поиска фотографии %s для удаления: %v", photoID, err)
		h.renderError(c, http.StatusNotFound, "Фотография не найдена.")
		return
	}
	if photo.UserID != sess.User().ID {
		log.Printf("Пользователь %s попытался удалить чужую фотографию %s.", sess.User().ID, photoID)
		h.renderError(c, http.StatusForbidden, "Удалять можно только собственные фотографии.")
		return
	}

	if err := h.api.DeletePhoto(c.Request.Context(), sess.Cookies, photoID); err != nil {
		log.Printf("Ошибка удаления фотографии %s: %v", photoID, err)
		h.renderError(c, http.StatusBadGateway, "Не удалось удалить фотографию.")
		return
	}
	log.Printf("Пользователь %s удалил фотографию %s.", sess.User().LoginName, photoID)
	feedRedirect(c)
}
