package core

// Rating 是一条评分事件：用户对物品的一次打分/反馈。
// 创建后不可变；没有独立的身份标识，相等性由三个字段的结构相等定义。
//
// ID 约定：
//   - UserID / ItemID 均为稠密的非负整数 ID（由上游的 ID 映射层分配）
//   - 负数 ID 是非法输入，由构造入口 NewRating 拒绝；dataset 层不再校验
type Rating struct {
	UserID int
	ItemID int
	Value  float64
}

// NewRating 创建一条评分事件，并校验 ID 合法性。
// 这是负数 ID 的唯一拦截点：通过此入口构造的 Rating 可以安全地交给 dataset 层。
func NewRating(userID, itemID int, value float64) (Rating, error) {
	if userID < 0 || itemID < 0 {
		return Rating{}, ErrInvalidRatingID
	}
	return Rating{UserID: userID, ItemID: itemID, Value: value}, nil
}

// Equal 判断两条评分事件是否结构相等（三个字段全部相同）。
func (r Rating) Equal(other Rating) bool {
	return r.UserID == other.UserID && r.ItemID == other.ItemID && r.Value == other.Value
}
