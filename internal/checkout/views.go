package checkout

import (
	"github.com/Lixing-Zhang/storefront/internal/cart"
	"github.com/Lixing-Zhang/storefront/internal/models"
)

// MsgOrderFailed is shown on the contact form when placement fails and the
// cart is kept
const MsgOrderFailed = "could not place the order, try again"

func previewView(p models.Product, inCart bool) models.PreviewView {
	return models.PreviewView{
		Product:     p,
		Kind:        p.Kind(),
		PriceText:   models.FormatPrice(p.Price),
		Purchasable: p.Purchasable(),
		InCart:      inCart,
	}
}

func basketView(c *cart.Cart) models.BasketView {
	items := c.Items()
	lines := make([]models.BasketLine, len(items))
	for i, p := range items {
		lines[i] = models.BasketLine{
			Index:     i + 1,
			ID:        p.ID,
			Title:     p.Title,
			Price:     p.Price,
			PriceText: models.FormatPrice(p.Price),
		}
	}
	total := c.Total()
	return models.BasketView{
		Items:     lines,
		Total:     total,
		TotalText: models.FormatAmount(total),
		Empty:     len(lines) == 0,
	}
}

// paymentForm shows the address error before the payment one
func paymentForm(errs models.ValidationErrors) models.FormState {
	return models.FormState{
		SubmitEnabled: errs.Valid(),
		ErrorText:     errs.First(models.FieldAddress, models.FieldPayment),
		Errors:        errs,
	}
}

// contactForm shows the email error before the phone one
func contactForm(errs models.ValidationErrors) models.FormState {
	return models.FormState{
		SubmitEnabled: errs.Valid(),
		ErrorText:     errs.First(models.FieldEmail, models.FieldPhone),
		Errors:        errs,
	}
}

func successView(resp models.OrderResponse) models.SuccessView {
	return models.SuccessView{
		OrderID: resp.ID,
		Total:   resp.Total,
		Text:    "Charged " + models.FormatAmount(resp.Total),
	}
}
