package core

// MonthLabels holds the short month names used on charts and tables.
var MonthLabels = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// IncomeCategories is the recommended vocabulary for income rows.
var IncomeCategories = []string{
	"Remuneraciones", "CTS", "Bono por Desempeño", "Compra vacaciones",
	"Pensión AFP", "Prestamos", "Otros depósitos", "Transferencias de ahorros",
	"Utilidades", "Saldo Inicial bancos", "Saldo Inicial caja",
	"Inter cuentas (William)", "Intereses ganados", "Reembolso de préstamo",
}

// ExpenseCategories is the recommended vocabulary for expense rows. Card
// names double as categories: payments are income rows under the same label.
var ExpenseCategories = []string{
	"Agua", "Electricidad", "Internet, Teléfono, Cable", "Celular", "Empleada",
	"Servicio de limpieza", "Predios", "Lavandería", "Alimentación", "Comida Preparada",
	"Panadería", "Postres", "Fruta", "Supermercado", "Mercado Semanal", "Transporte",
	"Taxi/Movilidad", "Gasolina", "Salud", "Medicina", "Dentista", "Oncosalud",
	"Mamá", "Familia", "Compromisos familiares", "Diversión", "Cine", "Regalos",
	"Ropa", "Calzado", "Aseo personal", "Peluquería", "Deuda", "American Express",
	"Oechsle MC", "Scotia MC", "Conti VISA", "Diners", "Seguros", "Seguro Médico",
	"Ahorro", "Fondos Mutuos", "Pandero", "Mantenimientos", "Miscelánea", "Varios",
}

// MonthLabel returns the short label for a 1-based month, or "" when out of range.
func MonthLabel(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return MonthLabels[month-1]
}

// IsKnownCategory reports whether category belongs to the recommended
// vocabulary for the direction. Callers use it for hints only.
func IsKnownCategory(d Direction, category string) bool {
	list := ExpenseCategories
	if d == Income {
		list = IncomeCategories
	}
	for _, c := range list {
		if c == category {
			return true
		}
	}
	return false
}
