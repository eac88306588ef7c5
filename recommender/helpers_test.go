package recommender

func item(id uint, category Category, color, style, material string, seasons, occasions []string) ClothingItem {
	return ClothingItem{
		ID:           id,
		OwnerID:      1,
		Name:         string(category),
		Category:     category,
		PrimaryColor: color,
		Style:        style,
		Material:     material,
		Seasons:      AttributeList(seasons...),
		Occasions:    AttributeList(occasions...),
	}
}

func prepareAll(items ...ClothingItem) []*PreparedItem {
	prepared := make([]*PreparedItem, 0, len(items))
	for _, it := range items {
		prepared = append(prepared, Prepare(it))
	}
	return prepared
}

func outfitOf(items ...ClothingItem) Outfit {
	return Outfit{Items: prepareAll(items...)}
}

// summerWardrobe is a white tee, black jeans and white sneakers.
func summerWardrobe() []ClothingItem {
	return []ClothingItem{
		item(1, CategoryTop, "white", "casual", "cotton", []string{"summer"}, []string{"daily"}),
		item(2, CategoryBottom, "black", "casual", "denim", []string{"spring", "summer", "autumn", "winter"}, []string{"daily", "casual"}),
		item(3, CategoryShoes, "white", "casual", "canvas", nil, nil),
	}
}
