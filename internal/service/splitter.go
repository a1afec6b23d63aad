package service

import "ordersync/internal/entities"

type proportionalSplitter struct{}

// NewProportionalSplitter — базовая реализация распределения долей:
// количество и цена по заявке, платежи и изображения остаются
// на исходном заказе.
func NewProportionalSplitter() Splitter {
	return proportionalSplitter{}
}

func (proportionalSplitter) Split(order entities.Order, allocations []entities.SplitAllocation) []entities.Order {
	parts := make([]entities.Order, 0, len(allocations))
	for i, a := range allocations {
		part := order
		part.Quantity = a.Quantity
		part.Price = a.Price
		if order.Price > 0 {
			part.PriceBase = order.PriceBase * (a.Price / order.Price)
		}
		if i > 0 {
			part.AmountPaid = 0
			part.TransactionFee = 0
			part.Images = nil
		}
		parts = append(parts, part)
	}
	return parts
}
