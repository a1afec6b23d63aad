package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"ordersync/internal/entities"
	"ordersync/internal/service"
	"ordersync/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	Create(ctx context.Context, order entities.Order) (entities.Order, error)
	Advance(ctx context.Context, orderID string, target entities.OrderStatus, fields service.StatusFields) (entities.Order, error)
	Revert(ctx context.Context, orderID, credential string) (entities.Order, error)
	RegisterPayment(ctx context.Context, orderID string, amount float64, method string, fee, deliveryCost float64) (entities.Order, error)
	Split(ctx context.Context, orderID string, allocations []entities.SplitAllocation) ([]entities.Order, error)
	AttachImage(ctx context.Context, orderID string, group entities.ImageGroup, ref string) (entities.Order, error)
	Delete(ctx context.Context, orderID, credential string) error
	GetOrderByID(ctx context.Context, orderID string) (entities.Order, error)
	PageOrders(ctx context.Context, offset, limit uint64) ([]entities.Order, error)
	SearchOrders(ctx context.Context, term string) ([]entities.Order, error)
	Filter(ctx context.Context, name string) ([]entities.Order, error)
	History(ctx context.Context, orderID string) ([]entities.HistoryEntry, error)
	Payments(ctx context.Context, orderID string) ([]entities.Payment, error)
	Summary(ctx context.Context, orderID string) (entities.BalanceSummary, error)
}

type SyncState interface {
	Online() bool
	PendingCount() int
	Dead() []entities.PendingWrite
}

type HTTPHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	svc      OrderService
	state    SyncState
	pageSize uint64
}

func NewHTTPHandler(logger *slog.Logger, svc OrderService, state SyncState, pageSize uint64) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger.With(slog.String("handler", "http")),
		validate: validator.New(),
		svc:      svc,
		state:    state,
		pageSize: pageSize,
	}
}

func (h *HTTPHandler) Init(r chi.Router) {
	r.Get("/orders", h.PageOrders)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/search", h.SearchOrders)
	r.Get("/orders/filter/{name}", h.FilterOrders)

	r.Get("/order/{order_id}", h.GetOrderByID)
	r.Delete("/order/{order_id}", h.DeleteOrder)
	r.Post("/order/{order_id}/advance", h.AdvanceOrder)
	r.Post("/order/{order_id}/revert", h.RevertOrder)
	r.Get("/order/{order_id}/history", h.OrderHistory)
	r.Get("/order/{order_id}/payments", h.OrderPayments)
	r.Post("/order/{order_id}/payments", h.RegisterPayment)
	r.Post("/order/{order_id}/split", h.SplitOrder)
	r.Post("/order/{order_id}/images", h.AttachImage)
	r.Get("/order/{order_id}/summary", h.OrderSummary)

	r.Get("/sync/status", h.SyncStatus)
}

// writeDomainError переводит класс ошибки в HTTP-статус.
func (h *HTTPHandler) writeDomainError(ctx context.Context, w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrReauthRequired):
		utils.WriteError(w, "reauthentication required", http.StatusUnauthorized)
	case errors.Is(err, entities.ErrInvalidCredential):
		utils.WriteError(w, "invalid credential", http.StatusForbidden)
	default:
		switch entities.KindOf(err) {
		case entities.KindValidation:
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
		case entities.KindAuthorization:
			utils.WriteError(w, "forbidden", http.StatusForbidden)
		case entities.KindConflict:
			utils.WriteError(w, err.Error(), http.StatusConflict)
		default:
			h.logger.ErrorContext(ctx, "request failed", slog.String("op", op), slog.Any("error", err))
			utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		}
	}
}

// GetOrderByID возвращает заказ по ID.
// @Summary      Получить заказ
// @Description  Возвращает заказ по его идентификатору, при офлайне из локального кеша
// @Tags         orders
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id} [get]
func (h *HTTPHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	if err := h.validate.Var(orderID, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.GetOrderByID(ctx, orderID)
	if err != nil {
		h.writeDomainError(ctx, w, err, "get order")
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// PageOrders возвращает страницу заказов.
// @Summary      Список заказов
// @Description  Постраничная выборка заказов, завершённые в конце списка
// @Tags         orders
// @Param        offset  query     int  false  "Смещение"
// @Param        limit   query     int  false  "Размер страницы"
// @Success      200  {array}   Order
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /orders [get]
func (h *HTTPHandler) PageOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)
	limit, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64)
	if err != nil || limit == 0 {
		limit = h.pageSize
	}

	orders, err := h.svc.PageOrders(ctx, offset, limit)
	if err != nil {
		h.writeDomainError(ctx, w, err, "page orders")
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// SearchOrders ищет заказы по номеру, трек-номеру или клиенту.
// @Summary      Поиск заказов
// @Tags         orders
// @Param        q   query      string  true  "Строка поиска"
// @Success      200  {array}   Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /orders/search [get]
func (h *HTTPHandler) SearchOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	term := r.URL.Query().Get("q")

	if err := h.validate.Var(term, "required"); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	orders, err := h.svc.SearchOrders(ctx, term)
	if err != nil {
		h.writeDomainError(ctx, w, err, "search orders")
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// FilterOrders применяет именованный фильтр.
// @Summary      Умный фильтр
// @Description  Вычисляет именованный предикат (late, needs_tracking, in_storage, unpaid) над текущими полями
// @Tags         orders
// @Param        name   path      string  true  "Имя фильтра"
// @Success      200  {array}   Order
// @Failure      400  {object}  utils.ErrorResponse "Неизвестный фильтр"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /orders/filter/{name} [get]
func (h *HTTPHandler) FilterOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orders, err := h.svc.Filter(ctx, chi.URLParam(r, "name"))
	if err != nil {
		h.writeDomainError(ctx, w, err, "filter orders")
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(orders), http.StatusOK)
}

// CreateOrder регистрирует новый заказ.
// @Summary      Создать заказ
// @Tags         orders
// @Param        order  body      CreateOrder  true  "Данные заказа"
// @Success      201  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /orders [post]
func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateOrder
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.Create(ctx, CreateOrderToEntity(req))
	if err != nil {
		h.writeDomainError(ctx, w, err, "create order")
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusCreated)
}

// AdvanceOrder переводит заказ в целевой статус.
// @Summary      Сменить статус
// @Tags         lifecycle
// @Param        order_id  path      string        true  "Идентификатор заказа"
// @Param        body      body      AdvanceOrder  true  "Целевой статус и сопутствующие поля"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Недопустимый статус"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/advance [post]
func (h *HTTPHandler) AdvanceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req AdvanceOrder
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.Advance(ctx, orderID, entities.OrderStatus(req.Status), service.StatusFields{
		TrackingNumber:  req.TrackingNumber,
		Weight:          req.Weight,
		ShippingCost:    req.ShippingCost,
		StorageLocation: req.StorageLocation,
	})
	if err != nil {
		h.writeDomainError(ctx, w, err, "advance order")
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// RevertOrder откатывает заказ в предыдущий статус.
// @Summary      Откатить статус
// @Description  Возврат по фиксированной цепочке, откат из COMPLETED требует повторной аутентификации
// @Tags         lifecycle
// @Param        order_id  path      string       true  "Идентификатор заказа"
// @Param        body      body      RevertOrder  false "Пароль повторной аутентификации"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ErrorResponse "Нет предыдущего статуса"
// @Failure      401  {object}  utils.ErrorResponse "Требуется повторная аутентификация"
// @Failure      403  {object}  utils.ErrorResponse "Неверный пароль"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/revert [post]
func (h *HTTPHandler) RevertOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req RevertOrder
	if r.ContentLength > 0 {
		if err := utils.DecodeBody(r, &req); err != nil {
			utils.WriteError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	order, err := h.svc.Revert(ctx, orderID, req.Credential)
	if err != nil {
		h.writeDomainError(ctx, w, err, "revert order")
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// OrderHistory возвращает журнал заказа.
// @Summary      История заказа
// @Tags         orders
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {array}   HistoryEntry
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/history [get]
func (h *HTTPHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	history, err := h.svc.History(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeDomainError(ctx, w, err, "order history")
		return
	}

	out := make([]HistoryEntry, 0, len(history))
	for _, entry := range history {
		out = append(out, HistoryEntityToJSON(entry))
	}
	utils.WriteJSON(w, out, http.StatusOK)
}

// OrderPayments возвращает леджер оплат заказа.
// @Summary      Оплаты заказа
// @Tags         payments
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {array}   Payment
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/payments [get]
func (h *HTTPHandler) OrderPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payments, err := h.svc.Payments(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeDomainError(ctx, w, err, "order payments")
		return
	}

	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentEntityToJSON(p))
	}
	utils.WriteJSON(w, out, http.StatusOK)
}

// RegisterPayment регистрирует оплату заказа.
// @Summary      Зарегистрировать оплату
// @Description  Добавляет неизменяемую запись леджера и увеличивает amount_paid
// @Tags         payments
// @Param        order_id  path      string           true  "Идентификатор заказа"
// @Param        body      body      RegisterPayment  true  "Сумма и способ оплаты"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/payments [post]
func (h *HTTPHandler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req RegisterPayment
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.RegisterPayment(ctx, orderID, req.Amount, req.Method, req.Fee, req.DeliveryCost)
	if err != nil {
		h.writeDomainError(ctx, w, err, "register payment")
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// SplitOrder делит заказ по долям.
// @Summary      Разделить заказ
// @Description  Суммарные количество и цена долей должны совпадать с исходным заказом
// @Tags         lifecycle
// @Param        order_id  path      string      true  "Идентификатор заказа"
// @Param        body      body      SplitOrder  true  "Доли"
// @Success      200  {array}   Order
// @Failure      400  {object}  utils.ErrorResponse "Доли не сходятся"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/split [post]
func (h *HTTPHandler) SplitOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req SplitOrder
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	parts, err := h.svc.Split(ctx, orderID, AllocationsToEntity(req.Allocations))
	if err != nil {
		h.writeDomainError(ctx, w, err, "split order")
		return
	}

	utils.WriteJSON(w, OrdersEntityToJSON(parts), http.StatusOK)
}

// AttachImage добавляет изображение к заказу.
// @Summary      Прикрепить изображение
// @Tags         orders
// @Param        order_id  path      string       true  "Идентификатор заказа"
// @Param        body      body      AttachImage  true  "Группа и ссылка"
// @Success      200  {object}  Order
// @Failure      400  {object}  utils.ValidationErrorResponse "Ошибка валидации"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/images [post]
func (h *HTTPHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req AttachImage
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.AttachImage(ctx, orderID, entities.ImageGroup(req.Group), req.Ref)
	if err != nil {
		h.writeDomainError(ctx, w, err, "attach image")
		return
	}

	utils.WriteJSON(w, OrderEntityToJSON(order), http.StatusOK)
}

// OrderSummary возвращает числовые поля для сборки уведомления.
// @Summary      Сводка по заказу
// @Tags         orders
// @Param        order_id   path      string  true  "Идентификатор заказа"
// @Success      200  {object}  entities.BalanceSummary
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id}/summary [get]
func (h *HTTPHandler) OrderSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.svc.Summary(ctx, chi.URLParam(r, "order_id"))
	if err != nil {
		h.writeDomainError(ctx, w, err, "order summary")
		return
	}

	utils.WriteJSON(w, summary, http.StatusOK)
}

// DeleteOrder удаляет заказ безвозвратно.
// @Summary      Удалить заказ
// @Description  Требует повторной аутентификации, в офлайне недоступно
// @Tags         orders
// @Param        order_id  path      string       true  "Идентификатор заказа"
// @Param        body      body      DeleteOrder  true  "Пароль повторной аутентификации"
// @Success      204  "Удалено"
// @Failure      401  {object}  utils.ErrorResponse "Требуется повторная аутентификация"
// @Failure      403  {object}  utils.ErrorResponse "Неверный пароль"
// @Failure      404  {object}  utils.ErrorResponse "Заказ не найден"
// @Failure      500  {object}  utils.ErrorResponse "Внутренняя ошибка сервера"
// @Router       /order/{order_id} [delete]
func (h *HTTPHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "order_id")

	var req DeleteOrder
	if r.ContentLength > 0 {
		if err := utils.DecodeBody(r, &req); err != nil {
			utils.WriteError(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	if err := h.svc.Delete(ctx, orderID, req.Credential); err != nil {
		h.writeDomainError(ctx, w, err, "delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SyncStatus возвращает состояние слоя синхронизации.
// @Summary      Статус синхронизации
// @Description  Признак онлайна и число неподтверждённых записей
// @Tags         sync
// @Success      200  {object}  SyncStatus
// @Router       /sync/status [get]
func (h *HTTPHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, SyncStatus{
		Online:        h.state.Online(),
		PendingWrites: h.state.PendingCount(),
		DeadWrites:    len(h.state.Dead()),
	}, http.StatusOK)
}
