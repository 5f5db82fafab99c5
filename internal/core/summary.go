package core

// CategoryTotal is the number of transactions and their signed sum for one category.
type CategoryTotal struct {
	Category Category
	Count    int
	Total    Money
}
