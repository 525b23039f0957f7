package insight

import "golang.org/x/text/language"

// Insight kinds produced by Generate.
const (
	KindExcellentMargin     Kind = "excellent_margin"
	KindHealthyMargin       Kind = "healthy_margin"
	KindLowMargin           Kind = "low_margin"
	KindOperatingLoss       Kind = "operating_loss"
	KindHighCostPerAgent    Kind = "high_cost_per_agent"
	KindEfficientAgentCost  Kind = "efficient_agent_cost"
	KindExcellentConversion Kind = "excellent_conversion"
	KindLowConversion       Kind = "low_conversion"
	KindHighCancellation    Kind = "high_cancellation"
	KindHighRevenuePerAgent Kind = "high_revenue_per_agent"
	KindLowRevenuePerAgent  Kind = "low_revenue_per_agent"
	KindStrongPipeline      Kind = "strong_pipeline"
	KindWeakPipeline        Kind = "weak_pipeline"
	KindExcessiveExpenses   Kind = "excessive_expenses"
	KindLeanOperations      Kind = "lean_operations"
	KindBuildDealVolume     Kind = "build_deal_volume"
	KindNegativeCashflow    Kind = "negative_cashflow"
	KindBelowBreakeven      Kind = "below_breakeven"
	KindAboveBreakeven      Kind = "above_breakeven"
	KindStrongCashflow      Kind = "strong_cashflow"
	KindWeakCashflow        Kind = "weak_cashflow"
	KindAccelerateSales     Kind = "accelerate_sales"
)

type messageSet struct {
	Title           string
	Description     string
	Recommendations []string
}

// translations holds the message templates per language. Placeholders use
// explicit argument indexes into the insight's Params.
var translations = map[language.Tag]map[Kind]messageSet{
	language.English: {
		KindExcellentMargin: {
			Title:       "Excellent Profit Margin",
			Description: "Your net profit margin is %[1]s, which is outstanding! You are keeping more than half of your gross revenue.",
			Recommendations: []string{
				"Consider reinvesting profits into marketing to accelerate growth.",
			},
		},
		KindHealthyMargin: {
			Title:       "Healthy Profit Margin",
			Description: "Your net profit margin is %[1]s, which is above average for the industry.",
			Recommendations: []string{
				"Maintain current efficiency while exploring growth opportunities.",
				"Reinvest %[2]s (10%% of net revenue) in marketing and agent training.",
				"Grow net revenue by %[3]s to reach a 50%% margin.",
			},
		},
		KindLowMargin: {
			Title:       "Low Profit Margin",
			Description: "Your net profit margin is %[1]s. Consider optimizing expenses to improve profitability.",
			Recommendations: []string{
				"Reduce variable expenses by %[2]s (20%% of current variable spend).",
				"Renegotiate fixed costs to save %[3]s (10%% of fixed expenses).",
				"Improve net revenue by %[4]s to reach a 30%% margin.",
			},
		},
		KindOperatingLoss: {
			Title:       "Operating at a Loss",
			Description: "Your expenses exceed your revenue. Immediate action is required.",
			Recommendations: []string{
				"Focus on closing more deals and reducing non-essential expenses.",
				"Close %[2]s more deals at your average commission to cover the %[1]s shortfall.",
			},
		},
		KindHighCostPerAgent: {
			Title:       "High Cost Per Agent",
			Description: "At %[1]s per agent, your operational costs are high.",
			Recommendations: []string{
				"Review if all agents are meeting their sales targets. Consider performance-based compensation adjustments.",
				"Cut total expenses by %[2]s to bring costs down to %[3]s per agent.",
			},
		},
		KindEfficientAgentCost: {
			Title:       "Efficient Agent Costs",
			Description: "Your cost per agent (%[1]s) is well-optimized.",
			Recommendations: []string{
				"This efficiency gives you room to invest in top-performing agents.",
				"You can invest up to %[2]s across the team before costs reach %[3]s per agent.",
			},
		},
		KindExcellentConversion: {
			Title:       "Excellent Conversion Rate",
			Description: "%[1]s of your deals are converting to contracts. Your sales team is performing exceptionally well!",
		},
		KindLowConversion: {
			Title:       "Low Conversion Rate",
			Description: "Only %[1]s of deals are converting. There may be issues in your sales process.",
			Recommendations: []string{
				"Analyze why deals aren't closing. Consider additional training or adjusting pricing strategies.",
				"Convert %[2]s more deals to contracts to reach a 40%% conversion rate.",
			},
		},
		KindHighCancellation: {
			Title:       "High Cancellation Rate",
			Description: "%[1]s of your deals are being cancelled. This is significantly impacting revenue.",
			Recommendations: []string{
				"Investigate cancellation reasons and improve post-sale client management.",
				"Retain %[2]s of the cancelled deals to bring cancellations down to 10%%.",
			},
		},
		KindHighRevenuePerAgent: {
			Title:       "High Revenue Per Agent",
			Description: "Each agent generates an average of %[1]s in commission revenue.",
			Recommendations: []string{
				"Your agents are highly productive. Consider expanding your team.",
			},
		},
		KindLowRevenuePerAgent: {
			Title:       "Low Revenue Per Agent",
			Description: "Average revenue per agent is %[1]s, which is below target.",
			Recommendations: []string{
				"Focus on agent training and lead quality improvement.",
				"Raise revenue per agent by %[2]s to reach %[3]s.",
				"That is about %[4]s more deals at your average commission.",
			},
		},
		KindStrongPipeline: {
			Title:       "Strong Future Pipeline",
			Description: "You have %[1]s in future commissions, more than double your current net revenue.",
			Recommendations: []string{
				"Plan for this influx and consider strategic investments or team expansion.",
			},
		},
		KindWeakPipeline: {
			Title:       "Weak Future Pipeline",
			Description: "Your expected future commissions (%[1]s) are low relative to your current expenses.",
			Recommendations: []string{
				"Increase sales activity urgently. Focus on moving deals through the pipeline faster.",
				"Add %[2]s in expected commissions to cover current expenses.",
			},
		},
		KindExcessiveExpenses: {
			Title:       "Excessive Expenses",
			Description: "Your expenses represent %[1]s of gross revenue. This is unsustainable.",
			Recommendations: []string{
				"Conduct an immediate expense audit. Cut non-essential costs.",
				"Cut %[2]s in expenses to bring them down to 70%% of gross revenue.",
			},
		},
		KindLeanOperations: {
			Title:       "Lean Operations",
			Description: "Your expenses are only %[1]s of gross revenue. Excellent cost management!",
		},
		KindBuildDealVolume: {
			Title:       "Build Deal Volume",
			Description: "You have relatively few deals in the pipeline (%[1]s). Focus on lead generation.",
			Recommendations: []string{
				"Increase marketing efforts and agent prospecting activities.",
				"Add %[2]s more deals to reach at least 5 in the pipeline.",
			},
		},
		KindNegativeCashflow: {
			Title:       "Negative Cashflow Alert",
			Description: "Your cashflow will turn negative in %[1]s. You need to close deals worth %[2]s to break even.",
		},
		KindBelowBreakeven: {
			Title:       "Below Break-Even Sales",
			Description: "You need to increase monthly sales by %[1]s to reach break-even. Current: %[2]s, Target: %[3]s",
		},
		KindAboveBreakeven: {
			Title:       "Above Break-Even",
			Description: "Your current sales volume exceeds break-even by %[1]s. Keep up the momentum!",
		},
		KindStrongCashflow: {
			Title:       "Strong Cashflow Forecast",
			Description: "%[1]s out of 12 months show positive cashflow. Your franchise is well-positioned for growth.",
		},
		KindWeakCashflow: {
			Title:       "Weak Cashflow Forecast",
			Description: "Only %[1]s months show positive cashflow. Focus on closing more deals and reducing expenses.",
		},
		KindAccelerateSales: {
			Title:       "Accelerate Sales",
			Description: "At current pace, it will take %[1]s months to reach break-even. Increase sales activity urgently.",
		},
	},
	language.Arabic: {
		KindExcellentMargin: {
			Title:       "هامش ربح ممتاز",
			Description: "هامش صافي الربح لديك %[1]s، وهو أداء استثنائي! أنت تحتفظ بأكثر من نصف إيراداتك الإجمالية.",
			Recommendations: []string{
				"فكّر في إعادة استثمار الأرباح في التسويق لتسريع النمو.",
			},
		},
		KindHealthyMargin: {
			Title:       "هامش ربح صحي",
			Description: "هامش صافي الربح لديك %[1]s، وهو أعلى من متوسط القطاع.",
			Recommendations: []string{
				"حافظ على كفاءتك الحالية مع استكشاف فرص النمو.",
				"أعد استثمار %[2]s (10%% من صافي الإيرادات) في التسويق وتدريب الوكلاء.",
				"زِد صافي الإيرادات بمقدار %[3]s للوصول إلى هامش 50%%.",
			},
		},
		KindLowMargin: {
			Title:       "هامش ربح منخفض",
			Description: "هامش صافي الربح لديك %[1]s. فكّر في تحسين المصروفات لرفع الربحية.",
			Recommendations: []string{
				"خفّض المصروفات المتغيرة بمقدار %[2]s (20%% من الإنفاق المتغير الحالي).",
				"أعد التفاوض على التكاليف الثابتة لتوفير %[3]s (10%% من المصروفات الثابتة).",
				"حسّن صافي الإيرادات بمقدار %[4]s للوصول إلى هامش 30%%.",
			},
		},
		KindOperatingLoss: {
			Title:       "تعمل بخسارة",
			Description: "مصروفاتك تتجاوز إيراداتك. مطلوب اتخاذ إجراء فوري.",
			Recommendations: []string{
				"ركّز على إغلاق المزيد من الصفقات وتقليل المصروفات غير الضرورية.",
				"أغلق %[2]s صفقات إضافية بمتوسط عمولتك لتغطية العجز البالغ %[1]s.",
			},
		},
		KindHighCostPerAgent: {
			Title:       "تكلفة مرتفعة لكل وكيل",
			Description: "بتكلفة %[1]s لكل وكيل، تكاليفك التشغيلية مرتفعة.",
			Recommendations: []string{
				"راجع ما إذا كان جميع الوكلاء يحققون أهداف مبيعاتهم. فكّر في تعديل التعويضات بناءً على الأداء.",
				"خفّض إجمالي المصروفات بمقدار %[2]s لتنخفض التكلفة إلى %[3]s لكل وكيل.",
			},
		},
		KindEfficientAgentCost: {
			Title:       "تكاليف وكلاء فعّالة",
			Description: "تكلفتك لكل وكيل (%[1]s) محسّنة بشكل جيد.",
			Recommendations: []string{
				"هذه الكفاءة تمنحك مجالًا للاستثمار في الوكلاء الأعلى أداءً.",
				"يمكنك استثمار ما يصل إلى %[2]s عبر الفريق قبل أن تصل التكلفة إلى %[3]s لكل وكيل.",
			},
		},
		KindExcellentConversion: {
			Title:       "معدل تحويل ممتاز",
			Description: "%[1]s من صفقاتك تتحول إلى عقود. فريق المبيعات لديك يؤدي أداءً استثنائيًا!",
		},
		KindLowConversion: {
			Title:       "معدل تحويل منخفض",
			Description: "%[1]s فقط من الصفقات تتحول إلى عقود. قد تكون هناك مشكلات في عملية البيع.",
			Recommendations: []string{
				"حلّل أسباب عدم إغلاق الصفقات. فكّر في تدريب إضافي أو تعديل استراتيجيات التسعير.",
				"حوّل %[2]s صفقات إضافية إلى عقود للوصول إلى معدل تحويل 40%%.",
			},
		},
		KindHighCancellation: {
			Title:       "معدل إلغاء مرتفع",
			Description: "%[1]s من صفقاتك يتم إلغاؤها. هذا يؤثر بشكل كبير على الإيرادات.",
			Recommendations: []string{
				"ابحث في أسباب الإلغاء وحسّن إدارة العملاء بعد البيع.",
				"احتفظ بـ %[2]s من الصفقات الملغاة لخفض الإلغاءات إلى 10%%.",
			},
		},
		KindHighRevenuePerAgent: {
			Title:       "إيراد مرتفع لكل وكيل",
			Description: "يحقق كل وكيل في المتوسط %[1]s من إيرادات العمولات.",
			Recommendations: []string{
				"وكلاؤك ذوو إنتاجية عالية. فكّر في توسيع فريقك.",
			},
		},
		KindLowRevenuePerAgent: {
			Title:       "إيراد منخفض لكل وكيل",
			Description: "متوسط الإيراد لكل وكيل %[1]s، وهو أقل من المستهدف.",
			Recommendations: []string{
				"ركّز على تدريب الوكلاء وتحسين جودة العملاء المحتملين.",
				"ارفع الإيراد لكل وكيل بمقدار %[2]s للوصول إلى %[3]s.",
				"أي نحو %[4]s صفقات إضافية بمتوسط عمولتك.",
			},
		},
		KindStrongPipeline: {
			Title:       "خط صفقات مستقبلي قوي",
			Description: "لديك %[1]s من العمولات المستقبلية، أي أكثر من ضعف صافي إيراداتك الحالي.",
			Recommendations: []string{
				"خطط لهذا التدفق وفكّر في استثمارات استراتيجية أو توسيع الفريق.",
			},
		},
		KindWeakPipeline: {
			Title:       "خط صفقات مستقبلي ضعيف",
			Description: "عمولاتك المستقبلية المتوقعة (%[1]s) منخفضة مقارنة بمصروفاتك الحالية.",
			Recommendations: []string{
				"زِد نشاط المبيعات بشكل عاجل. ركّز على تسريع حركة الصفقات عبر مراحل البيع.",
				"أضف %[2]s من العمولات المتوقعة لتغطية المصروفات الحالية.",
			},
		},
		KindExcessiveExpenses: {
			Title:       "مصروفات مفرطة",
			Description: "تمثل مصروفاتك %[1]s من الإيرادات الإجمالية. هذا غير مستدام.",
			Recommendations: []string{
				"أجرِ مراجعة فورية للمصروفات. اقطع التكاليف غير الضرورية.",
				"خفّض المصروفات بمقدار %[2]s لتصل إلى 70%% من الإيرادات الإجمالية.",
			},
		},
		KindLeanOperations: {
			Title:       "عمليات رشيقة",
			Description: "مصروفاتك تمثل %[1]s فقط من الإيرادات الإجمالية. إدارة تكاليف ممتازة!",
		},
		KindBuildDealVolume: {
			Title:       "بناء حجم الصفقات",
			Description: "لديك عدد قليل نسبيًا من الصفقات (%[1]s). ركّز على توليد العملاء المحتملين.",
			Recommendations: []string{
				"زِد جهود التسويق وأنشطة التنقيب لدى الوكلاء.",
				"أضف %[2]s صفقات إضافية للوصول إلى 5 صفقات على الأقل.",
			},
		},
		KindNegativeCashflow: {
			Title:       "تنبيه تدفق نقدي سلبي",
			Description: "سيصبح تدفقك النقدي سلبيًا في %[1]s. تحتاج إلى إغلاق صفقات بقيمة %[2]s لتحقيق التعادل.",
		},
		KindBelowBreakeven: {
			Title:       "مبيعات أقل من نقطة التعادل",
			Description: "تحتاج إلى زيادة المبيعات الشهرية بمقدار %[1]s للوصول إلى نقطة التعادل. الحالي: %[2]s، المستهدف: %[3]s",
		},
		KindAboveBreakeven: {
			Title:       "أعلى من نقطة التعادل",
			Description: "حجم مبيعاتك الحالي يتجاوز نقطة التعادل بمقدار %[1]s. حافظ على هذا الزخم!",
		},
		KindStrongCashflow: {
			Title:       "توقعات تدفق نقدي قوية",
			Description: "%[1]s من أصل 12 شهرًا تُظهر تدفقًا نقديًا إيجابيًا. فرعك في وضع جيد للنمو.",
		},
		KindWeakCashflow: {
			Title:       "توقعات تدفق نقدي ضعيفة",
			Description: "%[1]s أشهر فقط تُظهر تدفقًا نقديًا إيجابيًا. ركّز على إغلاق المزيد من الصفقات وتقليل المصروفات.",
		},
		KindAccelerateSales: {
			Title:       "سرّع المبيعات",
			Description: "بالوتيرة الحالية، ستحتاج إلى %[1]s شهرًا للوصول إلى نقطة التعادل. زِد نشاط المبيعات بشكل عاجل.",
		},
	},
}
