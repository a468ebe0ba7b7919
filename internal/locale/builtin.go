package locale

func builtins() []*Locale {
	return []*Locale{englishUS(), spanishES()}
}

func englishUS() *Locale {
	return &Locale{
		Code:     "en_US",
		Folder:   "en_EN",
		Channels: []string{"Shopify", "Amazon", "Physical Store"},
		Categories: []Category{
			{Name: "Electronics", Products: []string{"Smartphone", "Laptop", "Headphones", "Smart Watch", "Tablet", "Monitor", "Keyboard", "Mouse", "Camera", "Speaker"}},
			{Name: "Home", Products: []string{"Lamp", "Chair", "Table", "Sofa", "Rug", "Curtains", "Cushion", "Vase", "Mirror", "Clock"}},
			{Name: "Clothing", Products: []string{"T-Shirt", "Jeans", "Jacket", "Dress", "Sweater", "Shorts", "Skirt", "Coat", "Scarf", "Hat"}},
			{Name: "Toys", Products: []string{"Action Figure", "Doll", "Puzzle", "Board Game", "Teddy Bear", "Lego Set", "Toy Car", "Drone", "Kite", "Ball"}},
			{Name: "Sports", Products: []string{"Yoga Mat", "Dumbbell", "Tennis Racket", "Soccer Ball", "Running Shoes", "Backpack", "Water Bottle", "Helmet", "Gloves", "Jersey"}},
			{Name: "Books", Products: []string{"Novel", "Biography", "Cookbook", "Textbook", "Comic", "Magazine", "Guide", "Dictionary", "Atlas", "Journal"}},
		},
		Modifiers: []string{"Pro", "Lite", "Max", "Ultra", "Classic", "Modern", "Vintage", "Premium", "Basic", "Super"},
		MovementTypes: MovementLabels{
			Initial:  "Initial_Purchase",
			Sale:     "Sale",
			Purchase: "Purchase",
		},
		MonthNames: []string{
			"January", "February", "March", "April", "May", "June",
			"July", "August", "September", "October", "November", "December",
		},
	}
}

func spanishES() *Locale {
	return &Locale{
		Code:     "es_ES",
		Folder:   "es_ES",
		Channels: []string{"Shopify", "MercadoLibre", "Tienda Física"},
		Categories: []Category{
			{Name: "Electrónica", Products: []string{"Smartphone", "Laptop", "Auriculares", "Reloj Inteligente", "Tablet", "Monitor", "Teclado", "Ratón", "Cámara", "Altavoz"}},
			{Name: "Hogar", Products: []string{"Lámpara", "Silla", "Mesa", "Sofá", "Alfombra", "Cortinas", "Cojín", "Jarrón", "Espejo", "Reloj"}},
			{Name: "Ropa", Products: []string{"Camiseta", "Jeans", "Chaqueta", "Vestido", "Suéter", "Pantalones", "Falda", "Abrigo", "Bufanda", "Sombrero"}},
			{Name: "Juguetes", Products: []string{"Figura de Acción", "Muñeca", "Rompecabezas", "Juego de Mesa", "Oso de Peluche", "Set de Construcción", "Coche de Juguete", "Dron", "Cometa", "Pelota"}},
			{Name: "Deportes", Products: []string{"Esterilla Yoga", "Mancuerna", "Raqueta Tenis", "Balón Fútbol", "Zapatillas Running", "Mochila", "Botella Agua", "Casco", "Guantes", "Camiseta Deportiva"}},
			{Name: "Libros", Products: []string{"Novela", "Biografía", "Libro de Cocina", "Libro de Texto", "Cómic", "Revista", "Guía", "Diccionario", "Atlas", "Diario"}},
		},
		Modifiers: []string{"Pro", "Lite", "Max", "Ultra", "Clásico", "Moderno", "Vintage", "Premium", "Básico", "Súper"},
		MovementTypes: MovementLabels{
			Initial:  "Compra_Inicial",
			Sale:     "Venta",
			Purchase: "Compra",
		},
		MonthNames: []string{
			"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
			"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
		},
	}
}
