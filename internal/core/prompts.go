package core

import "fmt"

// Prompt templates for the Gemini calls. The rule sets are load-bearing:
// downstream systems validate the generated SQL against them (no CTEs, exact
// schema names, single statement), so changes here must be coordinated with
// the SQL executor.

func sqlPrompt(question, schemaHints string) string {
	return fmt.Sprintf(`당신은 MS-SQL (T-SQL) 전문가입니다. 반드시 아래 제공된 스키마 정보만 사용하여 SQL 쿼리를 생성해주세요.

=== 데이터베이스 스키마 정보 (반드시 이 정보만 사용) ===
%s
===============================================

사용자 질문: %s

중요 규칙 (반드시 준수):
1. 위에 제공된 스키마 정보에 있는 테이블명과 컬럼명만 사용하세요.
2. 스키마에 없는 테이블명(예: Orders, Order, OrderTable 등)을 절대 사용하지 마세요.
3. 스키마에 없는 컬럼명(예: OrderDate, Order_Date, pkDate 등)을 절대 사용하지 마세요.
4. 테이블명은 반드시 전체 경로 형식으로 사용하세요: "heechang.heechang.Pkfl" (단순히 "Pkfl"만 사용하면 안 됩니다!)
   - 단, sffl 테이블은 스키마 경로 없이 "sffl"만 사용하세요.
5. 컬럼명은 정확히 스키마에 명시된 실제 필드명을 사용하세요:
   - 발주일: Pk_date (pkDate 아님!)
   - 입고예정일: Pk_pdat (pkPdat 아님!)
   - 실입고일: Pk_ldat (pkLdat 아님!)
   - 등록일: Pk_bdat (pkBdat 아님!)
   - 기타 모든 필드도 스키마에 명시된 실제 필드명을 정확히 사용하세요.
6. MS-SQL (T-SQL) 문법을 사용하세요.
7. **보안 규칙 (매우 중요):**
   - WITH 절(CTE, Common Table Expression)을 절대 사용하지 마세요. 보안 검증에서 차단됩니다.
   - 복잡한 쿼리가 필요한 경우 서브쿼리(Subquery)나 JOIN을 사용하세요.
8. 날짜 처리 규칙:
   - 날짜 필드(Pk_date, Pk_pdat 등)는 YYYYMMDD 형식입니다 (예: 20240815).
   - 사용자가 년도를 명시하지 않으면 현재 년도를 사용하세요: YEAR(GETDATE())
   - 예시: "8월 발주 건수" → SUBSTRING(Pk_date, 1, 4) = CAST(YEAR(GETDATE()) AS VARCHAR(4)) AND SUBSTRING(Pk_date, 5, 2) = '08'
   - 예시: "2024년 8월 발주 건수" → SUBSTRING(Pk_date, 1, 4) = '2024' AND SUBSTRING(Pk_date, 5, 2) = '08'
9. COUNT 사용 규칙:
   - 사용자가 명시적으로 "중복 제거", "고유한", "유니크" 등의 표현을 사용하지 않는 한, COUNT(*)를 사용하세요.
   - 단순히 "건수", "개수", "몇 개"를 물어보는 경우에는 COUNT(*)를 사용하세요.
10. SQL 쿼리만 반환하세요. 설명, 주석, 마크다운 코드 블록은 포함하지 마세요.
11. 테이블명과 컬럼명은 대소문자를 구분하여 정확히 사용하세요 (예: Pk_date, Pk_pdat 등).

SQL 쿼리:`, schemaHints, question)
}

func classifyPrompt(question string) string {
	return fmt.Sprintf(`다음 사용자 질문을 분석하여 필요한 행동 유형을 결정하고, 아래 JSON 형식으로만 응답하세요.

사용자 질문: %s

판단 기준:
1. **SQL**: 데이터 조회 질문 (예: "8월 발주 건수는?", "거래처 목록 보여줘", "발주 현황 분석해줘", "월별 발주 추이 비교")
   - 단순 조회 질문
   - 분석, 비교, 트렌드, 요약 등의 질문이지만 **문서/보고서/차트 생성 요청이 없는 경우**
2. **REPORT**: **명시적으로 문서/보고서/차트 생성 요청**이 있는 질문
   - "보고서를 만들어줘", "차트를 만들어줘", "문서로 만들어줘", "HTML로 만들어줘"
   - **중요**: 단순히 "분석해줘", "비교해줘", "현황 알려줘"만 있으면 SQL 타입으로 분류
3. **GENERAL_CHAT**: 데이터베이스와 무관한 일반 질문 (예: "파이썬이 뭐야?", "날씨 알려줘")
   - 이 경우 chat_answer에 직접 답변을 생성하세요

중요 규칙:
- 반드시 아래 JSON 형식으로만 응답하세요.
- action_type이 GENERAL_CHAT인 경우에만 chat_answer를 작성하세요.
- action_type이 SQL 또는 REPORT인 경우 query에 원본 질문을 그대로 반환하세요.
- JSON 외의 다른 텍스트는 포함하지 마세요.

응답 형식 (JSON):
{
    "action_type": "SQL" | "REPORT" | "GENERAL_CHAT",
    "chat_answer": "GENERAL_CHAT인 경우에만 답변",
    "query": "SQL 또는 REPORT인 경우 원본 질문"
}`, question)
}

func schemaRelatedPrompt(question string) string {
	return fmt.Sprintf(`다음 질문이 데이터베이스 스키마(발주, 입고, 품목, 거래처 등)와 관련된 질문인지 판단해주세요.

질문: %s

판단 기준:
- 데이터베이스의 테이블, 컬럼, 데이터를 조회하는 질문이면 "YES"
- 발주, 입고, 품목, 거래처, 건수, 조회, 데이터 등과 관련된 질문이면 "YES"
- 일반적인 지식 질문(프로그래밍, 날씨, 역사 등)이면 "NO"
- 단순히 개념을 묻는 질문이면 "NO"

답변은 반드시 "YES" 또는 "NO"만 반환하세요.`, question)
}

func chatPrompt(question string) string {
	return fmt.Sprintf(`다음 질문에 대해 자연스럽고 명확한 답변을 작성해주세요.

질문: %s

요구사항:
1. 질문에 정확하고 유용한 답변을 제공하세요.
2. 자연스러운 한국어로 답변하세요.
3. 불필요한 설명은 생략하고 핵심 내용만 전달하세요.
4. 모르는 내용이면 솔직하게 모른다고 답변하세요.

답변:`, question)
}

func summarizePrompt(question, data string) string {
	return fmt.Sprintf(`다음 질문과 데이터를 바탕으로 자연스럽고 명확한 답변을 작성해주세요.

질문: %s

데이터:
%s

요구사항:
1. 데이터를 바탕으로 질문에 대한 답변을 작성하세요.
2. 자연스러운 한국어로 답변하세요.
3. 불필요한 설명은 생략하고 핵심 내용만 전달하세요.
4. 숫자나 통계가 있다면 마크다운 형식(**굵게**)으로 강조하세요.

답변:`, question, data)
}

func graphSummarizePrompt(question, data string) string {
	return fmt.Sprintf(`다음 질문과 데이터를 바탕으로 HTML 형식의 답변을 작성해주세요.

질문: %s

데이터:
%s

요구사항:
1. 데이터를 바탕으로 질문에 대한 답변을 작성하세요.
2. 자연스러운 한국어로 답변하세요.
3. **중요**: 답변은 HTML 형식으로 작성하되, 다음을 포함하세요:
   - 텍스트 설명
   - 데이터를 시각화한 HTML/CSS 그래프 (추이 그래프, 막대 그래프, 파이 차트 등 질문에 맞는 형태)
   - 그래프는 순수 HTML/CSS로 작성 (외부 라이브러리 사용 금지)
   - 데이터 값은 실제 데이터를 기반으로 정확하게 표시
4. 마크다운 형식(**굵게**)을 사용하여 중요한 숫자나 통계를 강조하세요.
5. HTML 태그는 이스케이프하지 말고 그대로 포함하세요.

답변:`, question, data)
}

const reportEnvelopeRules = `
응답은 반드시 아래 JSON 형식을 따르세요:
{
  "summary": "<자연어 요약 (마크다운 허용)>",
  "html_report": "<!DOCTYPE html>로 시작하는 완전한 HTML 문서 문자열>",
  "notes": "<선택 사항>"
}

HTML 규칙:
- 완전한 HTML 문서 구조를 포함하세요 (<html>, <head>, <body>).
- 기본 스타일을 위해 inline CSS를 head에 포함하세요 (폰트, 색상, 카드 스타일 등).
- 최소 1개의 데이터 요약 표를 포함하세요.
- 가능하면 간단한 막대/bar 스타일 차트를 CSS로 표현하세요 (예: div 막대).
- 외부 라이브러리는 사용하지 마세요. 순수 HTML/CSS만 사용하세요.
- 데이터가 없으면 합리적인 가상 수치를 사용하지만, 가상의 값임을 명시하세요.
`

func reportPrompt(question, data string) string {
	if data != "" {
		return fmt.Sprintf(`다음 질문과 데이터를 바탕으로 HTML 보고서를 작성해주세요.

질문: %s

데이터:
%s

%s`, question, data, reportEnvelopeRules)
	}
	return fmt.Sprintf(`다음 질문에 대한 HTML 보고서를 작성해주세요.

질문: %s

%s`, question, reportEnvelopeRules)
}
